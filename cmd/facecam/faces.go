package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/okian/facecam/internal/app"
	"github.com/okian/facecam/internal/domain/model"
	"github.com/okian/facecam/internal/domain/validation"
	"github.com/okian/facecam/pkg/logger"
)

func (c *cli) facesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faces",
		Short: "Manage the registry of known faces",
	}
	cmd.AddCommand(c.facesListCmd(), c.facesAddCmd(), c.facesDeleteCmd())
	return cmd
}

func (c *cli) facesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered faces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := newSession(c.cfg, nil)
			if err != nil {
				return err
			}
			view, err := sess.ListFaces(cmd.Context())
			if err != nil {
				return err
			}
			printRegistry(cmd.OutOrStdout(), view, sess.Locale())
			return nil
		},
	}
}

func printRegistry(out io.Writer, view app.RegistryView, loc app.Locale) {
	if view.Count == 0 {
		fmt.Fprintln(out, loc.NoFacesRegistered)
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tFILENAME")
	fmt.Fprintln(w, "----\t--------")
	for _, o := range view.Options {
		if o.Value == "" {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", o.Label, o.Value)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "\n%d face(s) registered\n", view.Count)
}

func (c *cli) facesAddCmd() *cobra.Command {
	var name, path string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a face from an image file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := readUpload(path, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			sess, err := newSession(c.cfg, nil)
			if err != nil {
				return err
			}
			msg, err := sess.AddFace(cmd.Context(), name, file)
			if err != nil {
				if m := model.UserMessage(err); m != "" {
					return errors.New(m)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the person")
	cmd.Flags().StringVar(&path, "file", "", "image file (PNG, JPEG, BMP, TIFF or WEBP)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readUpload reads path with a progress bar on progress. The content type is
// sniffed from the image, falling back to the extension.
func readUpload(path string, progress io.Writer) (*model.UploadFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > validation.MaxFileSize {
		return nil, errors.New(validation.MsgTooLarge)
	}

	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetDescription("reading "+filepath.Base(path)),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
	)
	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, bar), f); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	_ = bar.Finish()
	fmt.Fprintln(progress)

	data := buf.Bytes()
	contentType := validation.ContentType(data)
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}
	return &model.UploadFile{Filename: filepath.Base(path), ContentType: contentType, Data: data}, nil
}

func (c *cli) facesDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete FILENAME",
		Short: "Delete a registered face",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := newSession(c.cfg, nil)
			if err != nil {
				return err
			}
			// Loaded so the prompt can show the person's name.
			if _, err := sess.ListFaces(ctx); err != nil {
				logger.Get().Debug(ctx, "registry not loaded before delete", logger.Error(err))
			}

			msg, err := sess.DeleteFace(ctx, args[0], promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout(), yes))
			switch {
			case errors.Is(err, model.ErrNotConfirmed):
				fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
				return nil
			case err != nil:
				if m := model.UserMessage(err); m != "" {
					return errors.New(m)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// promptConfirmer asks on out and accepts y or yes from in. With skip it approves
// without asking.
func promptConfirmer(in io.Reader, out io.Writer, skip bool) app.Confirmer {
	return app.ConfirmFunc(func(_ context.Context, prompt string) bool {
		if skip {
			return true
		}
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}

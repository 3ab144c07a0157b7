package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/facecam/internal/app"
)

func (c *cli) recognizeCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "recognize",
		Short: "Run a single recognition cycle and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			source, err := newSource(c.cfg)
			if err != nil {
				return err
			}
			sess, err := newSession(c.cfg, source, app.WithManualCycles())
			if err != nil {
				return err
			}
			if err := sess.Start(ctx); err != nil {
				return err
			}
			defer sess.Stop()

			if err := sess.Cycle(ctx); err != nil {
				return fmt.Errorf("%s: %w", sess.Status().LastRecognition, err)
			}

			st := sess.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%d face(s) detected\n", st.LastRecognition, st.DetectedFaces)

			if out != "" {
				if err := os.WriteFile(out, sess.Frames().Latest(), 0o600); err != nil {
					return fmt.Errorf("write frame: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the annotated frame as JPEG to this path")
	return cmd
}

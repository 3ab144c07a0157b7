package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/facecam/internal/adapters/http/preview"
	"github.com/okian/facecam/pkg/logger"
)

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the camera, the recognition loop and the preview server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd)
		},
	}
}

func (c *cli) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := logger.Named("run")

	source, err := newSource(c.cfg)
	if err != nil {
		return err
	}
	sess, err := newSession(c.cfg, source)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	if c.cfg.PreviewAddr != "" {
		srv := preview.NewServer(sess,
			preview.WithAddr(c.cfg.PreviewAddr),
			preview.WithLogger(logger.Named("preview")),
		)
		go func() { serveErr <- srv.Run(ctx) }()
	} else {
		close(serveErr)
	}

	if err := sess.Start(ctx); err != nil {
		// A blocking camera failure stays visible on the preview page.
		if c.cfg.PreviewAddr == "" {
			return err
		}
		log.Error(ctx, "camera unavailable; serving status only", logger.Error(err))
	} else {
		defer sess.Stop()
	}

	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down...")
		if err := <-serveErr; err != nil {
			log.Error(ctx, "preview shutdown failed", logger.Error(err))
		}
		return nil
	case err := <-serveErr:
		if err == nil {
			<-ctx.Done()
			return nil
		}
		return err
	}
}

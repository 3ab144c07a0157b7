package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/facecam/internal/config"
	"github.com/okian/facecam/pkg/logger"
)

// Version is the application version.
var Version = "0.1.0"

// cli holds the state shared by subcommands.
type cli struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "facecam",
		Short:         "Live face recognition client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default: $FACECAM_CONFIG)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(c.runCmd(), c.recognizeCmd(), c.facesCmd(), versionCmd())
	return root
}

// setup loads .env, initializes logging and loads the configuration.
func (c *cli) setup(cmd *cobra.Command) error {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	var opts []config.LoadOption
	if c.configPath != "" {
		opts = append(opts, config.WithFile(c.configPath))
	}
	cfg, err := config.Load(cmd.Context(), opts...)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log level; falling back to info",
			logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c.cfg = cfg
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skips config loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

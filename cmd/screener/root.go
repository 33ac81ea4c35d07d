package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"MarketScreener/internal/config"
)

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
	logJSON    bool
}

// Execute builds the command tree and runs it.
func Execute(ctx context.Context) error {
	var flags globalFlags
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:           "screener",
		Short:         "Batch stock screener for configured ticker groups",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := setupLogging(flags.logLevel, flags.logJSON); err != nil {
				return err
			}
			if err := config.LoadEnvFile(flags.envFile); err != nil {
				return err
			}
			loaded, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			*cfg = *loaded
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", envOr("CONFIG_PATH", "configs/config.yaml"), "config file")
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before the config")
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVar(&flags.logJSON, "log-json", false, "log JSON lines instead of console output")

	root.AddCommand(runCmd(cfg), analyzeCmd(cfg), daemonCmd(cfg))
	return root.ExecuteContext(ctx)
}

func setupLogging(level string, asJSON bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	if asJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

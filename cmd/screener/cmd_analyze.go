package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"MarketScreener/internal/config"
	"MarketScreener/internal/publisher"
)

func analyzeCmd(cfg *config.Config) *cobra.Command {
	var profile string
	cmd := &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Print the record (or skip reason) for one ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cfg.Profile(profile)
			if err != nil {
				return err
			}
			s, err := buildScanner(cfg, publisher.NewNoopSink(), nil)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			rec, err := s.Analyze(cmd.Context(), args[0], p)
			if err != nil {
				return enc.Encode(map[string]any{"skipped": err})
			}
			return enc.Encode(rec)
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "profile name (default minervini)")
	return cmd
}

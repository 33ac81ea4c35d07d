package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"MarketScreener/internal/config"
	"MarketScreener/internal/metrics"
)

func runCmd(cfg *config.Config) *cobra.Command {
	var (
		groups []string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan all (or the selected) groups once and publish the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, err := cfg.ScanGroups(groups...)
			if err != nil {
				return err
			}
			sink, err := buildSink(cfg, dryRun)
			if err != nil {
				return err
			}
			defer sink.Close()

			s, err := buildScanner(cfg, sink, metrics.New())
			if err != nil {
				return err
			}
			report := s.Run(cmd.Context(), selected)
			if !dryRun {
				rec := buildRecorder(cfg)
				if err := rec.RecordRun(cmd.Context(), report); err != nil {
					log.Error().Err(err).Msg("record run")
				}
				rec.Close()
			}

			failed := 0
			for _, g := range report.Groups {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-16s records=%-3d skipped=%-3d published=%t\n",
					g.Group, g.Destination, len(g.Records), len(g.Skipped), g.Published)
				if g.PublishError != "" {
					failed++
				}
			}
			if err := cmd.Context().Err(); err != nil {
				return fmt.Errorf("run interrupted: %w", err)
			}
			if failed > 0 {
				return fmt.Errorf("%d group(s) failed to publish", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&groups, "group", nil, "group to scan (repeatable, default all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute results without publishing")
	return cmd
}

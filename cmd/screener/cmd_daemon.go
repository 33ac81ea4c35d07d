package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"MarketScreener/internal/config"
	"MarketScreener/internal/metrics"
	"MarketScreener/internal/scheduler"
	"MarketScreener/internal/server"
)

func daemonCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run scans on the configured schedule with Telegram commands and a monitor server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			groups, err := cfg.ScanGroups()
			if err != nil {
				return err
			}
			sink, err := buildSink(cfg, false)
			if err != nil {
				return err
			}
			defer sink.Close()

			m := metrics.New()
			s, err := buildScanner(cfg, sink, m)
			if err != nil {
				return err
			}

			rec := buildRecorder(cfg)
			defer rec.Close()

			tn := buildNotifier(cfg)
			sched := scheduler.NewScheduler(ctx, s, groups, tn, rec)
			if err := sched.Register(cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Info().Msg("telegram polling started")
			}
			if cfg.Schedule.RunOnStart {
				log.Info().Msg("run_on_start enabled, scanning now")
				go sched.RunNow(nil)
			}

			log.Info().Str("cron", cfg.Schedule.Cron).Int("groups", len(groups)).Msg("screener daemon running")
			err = server.Serve(ctx, cfg.Server.Addr, server.NewRouter(sched, m))
			log.Info().Msg("shutdown signal received, stopping")
			return err
		},
	}
}

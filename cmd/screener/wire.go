package main

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"MarketScreener/internal/collector"
	"MarketScreener/internal/config"
	"MarketScreener/internal/metrics"
	"MarketScreener/internal/notifier"
	"MarketScreener/internal/publisher"
	"MarketScreener/internal/recorder"
	"MarketScreener/internal/scanner"
	"MarketScreener/internal/sector"
	"MarketScreener/internal/sentiment"
)

func buildFetcher(cfg *config.Config) collector.Fetcher {
	var f collector.Fetcher
	switch cfg.Fetcher.Source {
	case config.SourceREST:
		f = collector.NewRESTFetcher(cfg.Fetcher.REST.BaseURL, cfg.Fetcher.REST.APIKey, cfg.Proxy)
	case config.SourceAlpaca:
		a := cfg.Fetcher.Alpaca
		f = collector.NewAlpacaFetcher(a.KeyID, a.SecretKey, a.BaseURL, a.Feed)
	case config.SourceStatic:
		f = &collector.StaticFetcher{Generate: true}
	default:
		f = collector.NewYahooFetcher(cfg.Proxy)
	}
	if b := cfg.Fetcher.Breaker; b.Enabled {
		f = collector.NewBreakerFetcher(f, collector.BreakerSettings{
			ConsecutiveFailures: b.ConsecutiveFailures,
			OpenTimeout:         b.OpenTimeout,
		})
	}
	return f
}

func buildSentiment(cfg *config.Config) sentiment.Source {
	s := cfg.Sentiment
	if !s.Enabled {
		return nil
	}
	analyzer := sentiment.NewAnalyzer()
	if len(s.Positive) > 0 {
		analyzer.Positive = s.Positive
	}
	if len(s.Negative) > 0 {
		analyzer.Negative = s.Negative
	}
	return sentiment.NewGoogleNewsSource(sentiment.GoogleNewsConfig{
		Language: s.Language,
		Region:   s.Region,
		Period:   s.Period,
		Interval: s.Interval,
		Timeout:  s.Timeout,
	}, analyzer)
}

func buildNotifier(cfg *config.Config) *notifier.TelegramNotifier {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		return nil
	}
	return notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
}

// buildSink fans out to every configured destination. Dry runs and configs
// without sinks publish to memory only.
func buildSink(cfg *config.Config, dryRun bool) (*publisher.MultiSink, error) {
	if dryRun {
		return publisher.NewMultiSink(publisher.NewNoopSink()), nil
	}
	sinks := cfg.Sinks
	out := publisher.NewMultiSink()

	if sinks.SQLite.Path != "" {
		s, err := publisher.NewSQLiteSink(sinks.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init sqlite sink: %w", err)
		}
		out.Sinks = append(out.Sinks, s)
	}
	if sinks.Sheets.SpreadsheetID != "" {
		out.Sinks = append(out.Sinks, publisher.NewSheetsSink(sinks.Sheets.SpreadsheetID, publisher.StaticToken(sinks.Sheets.Token)))
	}
	if sinks.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     sinks.Redis.Addr,
			Password: sinks.Redis.Password,
			DB:       sinks.Redis.DB,
		})
		out.Sinks = append(out.Sinks, publisher.NewRedisSink(client, sinks.Redis.Prefix))
	}
	if len(sinks.Kafka.Brokers) > 0 {
		out.Sinks = append(out.Sinks, publisher.NewKafkaSink(sinks.Kafka.Brokers, sinks.Kafka.Topic))
	}
	if sinks.Telegram.Enabled {
		out.Sinks = append(out.Sinks, notifier.NewTelegramSink(buildNotifier(cfg), sinks.Telegram.TopN))
	}

	if len(out.Sinks) == 0 {
		log.Warn().Msg("no sinks configured, results are kept in memory only")
		out.Sinks = append(out.Sinks, publisher.NewNoopSink())
	}
	for _, s := range out.Sinks {
		log.Info().Str("sink", s.Name()).Msg("sink enabled")
	}
	return out, nil
}

func buildScanner(cfg *config.Config, sink publisher.Sink, m *metrics.Metrics) (*scanner.Scanner, error) {
	var sectors *sector.Table
	if cfg.SectorsPath != "" {
		t, err := sector.Load(cfg.SectorsPath)
		if err != nil {
			return nil, err
		}
		sectors = t
	}
	fetcher := buildFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Msg("price source")

	return &scanner.Scanner{
		Fetcher:    fetcher,
		Sentiment:  buildSentiment(cfg),
		Sectors:    sectors,
		Sink:       sink,
		Metrics:    m,
		Format:     publisher.Format{PricePlaces: cfg.PricePlaces, Location: cfg.Location()},
		GroupDelay: cfg.GroupDelay,
	}, nil
}

func buildRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	r, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return r
}

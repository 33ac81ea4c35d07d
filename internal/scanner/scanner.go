// Package scanner runs the screening pipeline over ticker groups.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"MarketScreener/internal/calculator"
	"MarketScreener/internal/collector"
	"MarketScreener/internal/metrics"
	"MarketScreener/internal/model"
	"MarketScreener/internal/publisher"
	"MarketScreener/internal/sector"
	"MarketScreener/internal/sentiment"
	"MarketScreener/internal/strategy"
)

// ErrFetch marks price source failures.
var ErrFetch = errors.New("fetch failed")

// Group is one configured batch of tickers published to one destination.
type Group struct {
	Name        string
	Destination string
	Profile     strategy.Profile
	Tickers     []string
}

// GroupReport summarises one group scan.
type GroupReport struct {
	Group        string             `json:"group"`
	Destination  string             `json:"destination"`
	Profile      string             `json:"profile"`
	Records      []model.Record     `json:"records"`
	Skipped      []model.SkipReason `json:"skipped"`
	Published    bool               `json:"published"`
	PublishError string             `json:"publish_error,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
}

// RunReport summarises a run over several groups.
type RunReport struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Groups     []GroupReport `json:"groups"`
}

// Counts returns the number of records and skips over all groups.
func (r RunReport) Counts() (records, skipped int) {
	for _, g := range r.Groups {
		records += len(g.Records)
		skipped += len(g.Skipped)
	}
	return records, skipped
}

// Scanner wires the price source, news source and sink together.
// Tickers are processed one at a time.
type Scanner struct {
	Fetcher    collector.Fetcher
	Sentiment  sentiment.Source // nil disables news lookups
	Sectors    *sector.Table
	Sink       publisher.Sink
	Metrics    *metrics.Metrics
	Format     publisher.Format
	GroupDelay time.Duration // courtesy pause after each group's publish step

	Now func() time.Time
}

func (s *Scanner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Analyze runs the pipeline for one ticker. A non-nil error is always a
// model.SkipReason.
func (s *Scanner) Analyze(ctx context.Context, ticker string, p strategy.Profile) (model.Record, error) {
	skip := func(kind model.SkipKind, err error) (model.Record, error) {
		return model.Record{}, model.SkipReason{Ticker: ticker, Kind: kind, Err: err}
	}

	bars, err := s.Fetcher.FetchDailyBars(ctx, ticker, p.HistoryDays)
	if err != nil {
		return skip(model.SkipFetchFailed, fmt.Errorf("%w: %s: %w", ErrFetch, s.Fetcher.Name(), err))
	}
	if len(bars) == 0 {
		return skip(model.SkipFetchFailed, fmt.Errorf("%w: %w", ErrFetch, collector.ErrNoData))
	}
	if len(bars) < p.MinBars {
		return skip(model.SkipInsufficientHistory,
			fmt.Errorf("%w: %d bars, need %d", calculator.ErrInsufficientData, len(bars), p.MinBars))
	}

	assessment, err := strategy.Evaluate(ticker, bars, p)
	switch {
	case errors.Is(err, calculator.ErrInsufficientData):
		return skip(model.SkipInsufficientHistory, err)
	case err != nil:
		return skip(model.SkipInvalidIndicator, err)
	}

	var news *model.Sentiment
	if s.Sentiment != nil && strategy.NeedsSentiment(assessment, p) {
		result, err := s.Sentiment.Check(ctx, ticker, s.Sectors.KeywordsFor(ticker))
		switch {
		case err == nil:
			news = &result
		case p.Sentiment.NeutralOnError:
			log.Warn().Str("ticker", ticker).Err(err).Msg("news lookup failed, scoring as neutral")
			news = &model.Sentiment{Narrative: sentiment.NarrativeError}
		default:
			return skip(model.SkipSentimentFailed, err)
		}
	}

	return strategy.Finalize(assessment, news, p), nil
}

// RunGroup scans every ticker of the group, ranks the survivors and
// publishes them in a single call. A group without survivors is not published.
func (s *Scanner) RunGroup(ctx context.Context, g Group) GroupReport {
	report := GroupReport{
		Group:       g.Name,
		Destination: g.Destination,
		Profile:     g.Profile.Name,
		StartedAt:   s.now(),
	}
	logger := log.With().Str("group", g.Name).Logger()
	logger.Info().Int("tickers", len(g.Tickers)).Str("profile", g.Profile.Name).Msg("scanning group")

	for _, ticker := range g.Tickers {
		if ctx.Err() != nil {
			logger.Warn().Err(ctx.Err()).Msg("scan interrupted")
			break
		}
		rec, err := s.Analyze(ctx, ticker, g.Profile)
		if err != nil {
			var reason model.SkipReason
			if !errors.As(err, &reason) {
				reason = model.SkipReason{Ticker: ticker, Kind: model.SkipInvalidIndicator, Err: err}
			}
			logger.Warn().Str("ticker", ticker).Str("reason", string(reason.Kind)).Err(reason.Err).Msg("ticker skipped")
			report.Skipped = append(report.Skipped, reason)
			s.Metrics.Skip(g.Name, string(reason.Kind))
			continue
		}
		report.Records = append(report.Records, rec)
		s.Metrics.Record(g.Name)
	}

	Rank(report.Records)

	if len(report.Records) > 0 && ctx.Err() == nil {
		table := publisher.BuildTable(g.Destination, report.Records, s.now(), s.Format)
		err := s.Sink.Publish(ctx, table)
		s.Metrics.Publish(s.Sink.Name(), err)
		if err != nil {
			report.PublishError = err.Error()
			logger.Error().Err(err).Str("sink", s.Sink.Name()).Msg("publish failed")
		} else {
			report.Published = true
		}
	}

	report.FinishedAt = s.now()
	s.Metrics.ObserveScan(g.Name, report.FinishedAt.Sub(report.StartedAt))
	logger.Info().
		Int("records", len(report.Records)).
		Int("skipped", len(report.Skipped)).
		Bool("published", report.Published).
		Msg("group done")
	return report
}

// Run scans the groups in order, pausing GroupDelay between groups.
func (s *Scanner) Run(ctx context.Context, groups []Group) RunReport {
	run := RunReport{RunID: uuid.NewString(), StartedAt: s.now()}
	logger := log.With().Str("run_id", run.RunID).Logger()
	logger.Info().Int("groups", len(groups)).Msg("run started")

	for i, g := range groups {
		if ctx.Err() != nil {
			break
		}
		run.Groups = append(run.Groups, s.RunGroup(ctx, g))
		if i < len(groups)-1 {
			if err := sleep(ctx, s.GroupDelay); err != nil {
				break
			}
		}
	}

	run.FinishedAt = s.now()
	s.Metrics.RunFinished(run.FinishedAt)
	records, skipped := run.Counts()
	logger.Info().Int("records", records).Int("skipped", skipped).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).Msg("run finished")
	return run
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

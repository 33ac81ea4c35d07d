package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScreener/internal/collector"
	"MarketScreener/internal/metrics"
	"MarketScreener/internal/model"
	"MarketScreener/internal/publisher"
	"MarketScreener/internal/sentiment"
	"MarketScreener/internal/strategy"
)

var start = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

func rising(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 100 + 0.05*float64(i)
		s := 1 - 0.003*float64(i)
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c + s, Low: c - s, Close: c, Volume: 1000}
	}
	bars[n-1].Volume = 3000
	return bars
}

func flat(n int, price float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return bars
}

type failingSink struct{ calls int }

func (f *failingSink) Name() string { return "failing" }
func (f *failingSink) Publish(context.Context, publisher.Table) error {
	f.calls++
	return errors.New("quota exceeded")
}

func newScanner(bars map[string][]model.OHLCV) (*Scanner, *publisher.NoopSink, *sentiment.StaticSource) {
	sink := publisher.NewNoopSink()
	news := &sentiment.StaticSource{}
	s := &Scanner{
		Fetcher:   &collector.StaticFetcher{Bars: bars},
		Sentiment: news,
		Sink:      sink,
		Metrics:   metrics.New(),
		Format:    publisher.DefaultFormat(),
		Now:       func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) },
	}
	return s, sink, news
}

func group(tickers ...string) Group {
	return Group{Name: "test", Destination: "Sheet1", Profile: strategy.DefaultProfile(), Tickers: tickers}
}

func TestRunGroup_ShortHistoryIsAbsent(t *testing.T) {
	s, sink, _ := newScanner(map[string][]model.OHLCV{
		"AAA.JK": rising(260),
		"NEW.JK": rising(120),
		"FLT.JK": flat(260, 100),
	})

	report := s.RunGroup(context.Background(), group("NEW.JK", "FLT.JK", "AAA.JK"))

	require.Len(t, report.Records, 2)
	assert.Equal(t, "AAA.JK", report.Records[0].Ticker)
	assert.Equal(t, "FLT.JK", report.Records[1].Ticker)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "NEW.JK", report.Skipped[0].Ticker)
	assert.Equal(t, model.SkipInsufficientHistory, report.Skipped[0].Kind)
	assert.True(t, report.Published)

	table, ok := sink.Table("Sheet1")
	require.True(t, ok)
	require.Len(t, table.Rows, 2)
	for _, row := range table.Rows {
		assert.NotEqual(t, "NEW.JK", row[0])
	}
	assert.Equal(t, 1, sink.Calls())

	assert.Equal(t, 2.0, testutil.ToFloat64(s.Metrics.TickersProcessed.WithLabelValues("test", "record")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.TickersSkipped.WithLabelValues("insufficient_history")))
}

func TestRunGroup_SentimentOnlyAboveThreshold(t *testing.T) {
	s, _, news := newScanner(map[string][]model.OHLCV{
		"AAA.JK": rising(260),
		"FLT.JK": flat(260, 100),
	})
	news.Results = map[string]model.Sentiment{"AAA": {Narrative: "POSITIVE NEWS | laba naik", Score: 2}}

	report := s.RunGroup(context.Background(), group("AAA.JK", "FLT.JK"))

	assert.Equal(t, []string{"AAA"}, news.Calls)
	require.Len(t, report.Records, 2)
	assert.Equal(t, 90, report.Records[0].Score)
	assert.Equal(t, "POSITIVE NEWS | laba naik", report.Records[0].News)
	assert.Equal(t, "-", report.Records[1].News)
}

func TestRunGroup_SentimentFailure(t *testing.T) {
	bars := map[string][]model.OHLCV{"AAA.JK": rising(260)}

	s, sink, news := newScanner(bars)
	news.Errors = map[string]error{"AAA": errors.New("feed timeout")}
	report := s.RunGroup(context.Background(), group("AAA.JK"))
	assert.Empty(t, report.Records)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, model.SkipSentimentFailed, report.Skipped[0].Kind)
	assert.Zero(t, sink.Calls(), "empty group is not published")
	assert.False(t, report.Published)

	s, _, news = newScanner(bars)
	news.Errors = map[string]error{"AAA": errors.New("feed timeout")}
	g := group("AAA.JK")
	g.Profile.Sentiment.NeutralOnError = true
	report = s.RunGroup(context.Background(), g)
	require.Len(t, report.Records, 1)
	assert.Equal(t, 80, report.Records[0].Score)
	assert.Equal(t, sentiment.NarrativeError, report.Records[0].News)
}

func TestRunGroup_FetchFailure(t *testing.T) {
	s, _, _ := newScanner(nil)
	s.Fetcher = &collector.StaticFetcher{Errors: map[string]error{"BAD.JK": errors.New("502")}}

	report := s.RunGroup(context.Background(), group("BAD.JK", "GONE.JK"))

	require.Len(t, report.Skipped, 2)
	for _, skip := range report.Skipped {
		assert.Equal(t, model.SkipFetchFailed, skip.Kind)
		assert.ErrorIs(t, skip, ErrFetch)
	}
	assert.ErrorIs(t, report.Skipped[1], collector.ErrNoData)
}

func TestRunGroup_PublishFailure(t *testing.T) {
	s, _, _ := newScanner(map[string][]model.OHLCV{"AAA.JK": rising(260)})
	sink := &failingSink{}
	s.Sink = sink

	report := s.RunGroup(context.Background(), group("AAA.JK"))

	assert.Equal(t, 1, sink.calls)
	assert.False(t, report.Published)
	assert.Equal(t, "quota exceeded", report.PublishError)
	assert.Len(t, report.Records, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.Publishes.WithLabelValues("failing", "error")))
}

func TestRunGroup_Cancelled(t *testing.T) {
	s, sink, _ := newScanner(map[string][]model.OHLCV{"AAA.JK": rising(260)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := s.RunGroup(ctx, group("AAA.JK"))
	assert.Empty(t, report.Records)
	assert.Zero(t, sink.Calls())
}

func TestRank(t *testing.T) {
	rec := func(ticker string, score int, rr float64) model.Record {
		return model.Record{Ticker: ticker, Score: score, Risk: model.RiskLevels{RiskReward: rr}}
	}
	records := []model.Record{
		rec("CCC", 70, 1.5),
		rec("BBB", 90, 2.0),
		rec("AAA", 70, 1.5),
		rec("DDD", 70, 3.0),
		rec("EEE", -10, 50),
	}
	Rank(records)

	var got []string
	for _, r := range records {
		got = append(got, r.Ticker)
	}
	assert.Equal(t, []string{"BBB", "DDD", "AAA", "CCC", "EEE"}, got)
}

func TestRun_GroupsInOrder(t *testing.T) {
	s, sink, _ := newScanner(map[string][]model.OHLCV{
		"AAA.JK": rising(260),
		"BBB.JK": flat(260, 50),
	})
	s.GroupDelay = time.Millisecond

	groups := []Group{
		{Name: "banks", Destination: "Banks", Profile: strategy.DefaultProfile(), Tickers: []string{"AAA.JK"}},
		{Name: "mining", Destination: "Mining", Profile: strategy.WyckoffProfile(), Tickers: []string{"BBB.JK"}},
	}
	run := s.Run(context.Background(), groups)

	assert.NotEmpty(t, run.RunID)
	require.Len(t, run.Groups, 2)
	assert.Equal(t, "banks", run.Groups[0].Group)
	assert.Equal(t, "wyckoff", run.Groups[1].Profile)
	records, skipped := run.Counts()
	assert.Equal(t, 2, records)
	assert.Zero(t, skipped)
	assert.Equal(t, 2, sink.Calls())
}

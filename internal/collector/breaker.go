package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"MarketScreener/internal/model"
)

// BreakerSettings configures BreakerFetcher.
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// BreakerFetcher fails fast once the wrapped source has failed repeatedly.
// It never retries; an open breaker simply returns gobreaker.ErrOpenState.
type BreakerFetcher struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerFetcher wraps next in a circuit breaker.
func NewBreakerFetcher(next Fetcher, s BreakerSettings) *BreakerFetcher {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = time.Minute
	}
	return &BreakerFetcher{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        next.Name(),
			MaxRequests: 1,
			Timeout:     s.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= s.ConsecutiveFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).
					Msg("price source breaker changed state")
			},
		}),
	}
}

func (f *BreakerFetcher) Name() string { return f.next.Name() }

// State reports the breaker state.
func (f *BreakerFetcher) State() gobreaker.State { return f.cb.State() }

func (f *BreakerFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	res, err := f.cb.Execute(func() (interface{}, error) {
		return f.next.FetchDailyBars(ctx, symbol, days)
	})
	if err != nil {
		return nil, err
	}
	return res.([]model.OHLCV), nil
}

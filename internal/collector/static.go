package collector

import (
	"context"
	"fmt"
	"time"

	"MarketScreener/internal/model"
)

// StaticFetcher serves fixed bars per symbol for development and testing.
// Symbols without an entry get a generated gently rising series when
// Generate is set, and ErrNoData otherwise.
type StaticFetcher struct {
	Bars     map[string][]model.OHLCV
	Errors   map[string]error
	Generate bool
	Price    float64

	Calls []string
}

func (s *StaticFetcher) Name() string { return "static" }

func (s *StaticFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.OHLCV, error) {
	s.Calls = append(s.Calls, symbol)
	if err, ok := s.Errors[symbol]; ok {
		return nil, err
	}
	if bars, ok := s.Bars[symbol]; ok {
		return bars, nil
	}
	if s.Generate {
		price := s.Price
		if price == 0 {
			price = 100
		}
		return generateBars(price, days*5/7), nil
	}
	return nil, fmt.Errorf("static %s: %w", symbol, ErrNoData)
}

func generateBars(basePrice float64, count int) []model.OHLCV {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

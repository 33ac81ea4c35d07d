package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"MarketScreener/internal/model"
)

// ErrNoData is returned when a source answers without any usable bar.
var ErrNoData = errors.New("no data returned")

// Fetcher retrieves daily price history. days is the calendar lookback.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}

// newHTTPClient builds a client with an optional proxy.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

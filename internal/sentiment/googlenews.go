package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"MarketScreener/internal/model"
)

const googleNewsURL = "https://news.google.com/rss/search"

// GoogleNewsConfig configures GoogleNewsSource.
type GoogleNewsConfig struct {
	BaseURL  string
	Language string        // hl, e.g. "id"
	Region   string        // gl, e.g. "ID"
	Period   string        // search window, e.g. "7d"
	Interval time.Duration // minimum spacing between requests
	Timeout  time.Duration
}

// GoogleNewsSource searches the Google News RSS feed.
type GoogleNewsSource struct {
	cfg      GoogleNewsConfig
	parser   *gofeed.Parser
	limiter  *rate.Limiter
	analyzer *Analyzer
}

// NewGoogleNewsSource creates a throttled source.
func NewGoogleNewsSource(cfg GoogleNewsConfig, analyzer *Analyzer) *GoogleNewsSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = googleNewsURL
	}
	if cfg.Language == "" {
		cfg.Language = "id"
	}
	if cfg.Region == "" {
		cfg.Region = "ID"
	}
	if cfg.Period == "" {
		cfg.Period = "7d"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if analyzer == nil {
		analyzer = NewAnalyzer()
	}

	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: cfg.Timeout}
	parser.UserAgent = "Mozilla/5.0"

	return &GoogleNewsSource{
		cfg:      cfg,
		parser:   parser,
		limiter:  rate.NewLimiter(limit, 1),
		analyzer: analyzer,
	}
}

func (g *GoogleNewsSource) searchURL(query string) string {
	q := url.Values{}
	q.Set("q", query+" when:"+g.cfg.Period)
	q.Set("hl", g.cfg.Language)
	q.Set("gl", g.cfg.Region)
	q.Set("ceid", g.cfg.Region+":"+g.cfg.Language)
	return g.cfg.BaseURL + "?" + q.Encode()
}

// Check fetches recent headlines for the cleaned ticker and scores them.
func (g *GoogleNewsSource) Check(ctx context.Context, ticker string, keywords []string) (model.Sentiment, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return model.Sentiment{Narrative: NarrativeError}, fmt.Errorf("news throttle: %w", err)
	}

	feed, err := g.parser.ParseURLWithContext(g.searchURL(CleanTicker(ticker)), ctx)
	if err != nil {
		return model.Sentiment{Narrative: NarrativeError}, fmt.Errorf("news feed %s: %w", ticker, err)
	}

	headlines := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title != "" {
			headlines = append(headlines, item.Title)
		}
	}
	return g.analyzer.Analyze(headlines, keywords), nil
}

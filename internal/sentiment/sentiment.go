// Package sentiment scores recent news headlines for a ticker.
package sentiment

import (
	"context"
	"fmt"
	"strings"

	"MarketScreener/internal/model"
)

// Narrative prefixes.
const (
	NarrativePositive = "POSITIVE NEWS"
	NarrativeNegative = "NEGATIVE NEWS"
	NarrativeNeutral  = "NEUTRAL"
	NarrativeNoNews   = "No News"
	NarrativeError    = "Error"
)

// Source looks up news sentiment for a ticker. keywords extend the positive
// phrase set, typically with the ticker's sector vocabulary.
type Source interface {
	Check(ctx context.Context, ticker string, keywords []string) (model.Sentiment, error)
}

// CleanTicker strips the exchange suffix: "BBRI.JK" becomes "BBRI".
func CleanTicker(ticker string) string {
	if i := strings.IndexByte(ticker, '.'); i > 0 {
		return ticker[:i]
	}
	return ticker
}

// DefaultPositive and DefaultNegative are Indonesian market-news phrases.
var (
	DefaultPositive = []string{
		"laba naik", "dividen", "akuisisi", "merger", "buyback",
		"proyek baru", "kerjasama", "investasi", "untung", "lonjakan",
		"ekspansi", "tertinggi", "positif", "disetujui", "bonus",
	}
	DefaultNegative = []string{
		"rugi", "turun", "anjlok", "pkpu", "pailit", "gugat",
		"suspensi", "utang", "beban", "negatif", "korupsi",
		"diperiksa", "sanksi", "denda", "phk",
	}
)

// Analyzer counts phrase hits in the top headlines.
type Analyzer struct {
	Positive     []string
	Negative     []string
	TopHeadlines int
}

// NewAnalyzer returns an analyzer with the default phrase lists.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		Positive:     DefaultPositive,
		Negative:     DefaultNegative,
		TopHeadlines: 3,
	}
}

// Analyze scores headlines: +1 per positive phrase and -1 per negative phrase
// found in each of the first TopHeadlines titles. extra phrases count as positive.
func (a *Analyzer) Analyze(headlines, extra []string) model.Sentiment {
	if len(headlines) == 0 {
		return model.Sentiment{Narrative: NarrativeNoNews}
	}
	top := headlines
	if a.TopHeadlines > 0 && len(top) > a.TopHeadlines {
		top = top[:a.TopHeadlines]
	}

	positive := make([]string, 0, len(a.Positive)+len(extra))
	positive = append(positive, a.Positive...)
	for _, kw := range extra {
		if kw = strings.TrimSpace(kw); kw != "" {
			positive = append(positive, kw)
		}
	}

	score := 0
	for _, title := range top {
		lower := strings.ToLower(title)
		for _, kw := range positive {
			if strings.Contains(lower, strings.ToLower(kw)) {
				score++
			}
		}
		for _, kw := range a.Negative {
			if strings.Contains(lower, strings.ToLower(kw)) {
				score--
			}
		}
	}

	label := NarrativeNeutral
	switch {
	case score > 0:
		label = NarrativePositive
	case score < 0:
		label = NarrativeNegative
	}
	return model.Sentiment{
		Narrative: fmt.Sprintf("%s | %s", label, headlines[0]),
		Score:     score,
	}
}

// StaticSource returns canned results. Tickers are matched after CleanTicker.
type StaticSource struct {
	Results map[string]model.Sentiment
	Errors  map[string]error

	Calls []string
}

func (s *StaticSource) Check(_ context.Context, ticker string, _ []string) (model.Sentiment, error) {
	clean := CleanTicker(ticker)
	s.Calls = append(s.Calls, clean)
	if err, ok := s.Errors[clean]; ok {
		return model.Sentiment{Narrative: NarrativeError}, err
	}
	if r, ok := s.Results[clean]; ok {
		return r, nil
	}
	return model.Sentiment{Narrative: NarrativeNoNews}, nil
}

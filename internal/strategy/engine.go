package strategy

import (
	"strings"

	"MarketScreener/internal/model"
)

// DefaultAction is assigned when no tier matches.
const DefaultAction = model.ActionWatchlist

// Assessment is the technical evaluation of one ticker, before any news check.
type Assessment struct {
	Ticker     string
	Indicators model.Indicators
	Flags      model.Flags
	Score      int
	Risk       model.RiskLevels
}

// Evaluate computes indicators, flags, base score and risk levels for one ticker.
// It has no side effects; the same bars and profile always give the same assessment.
func Evaluate(ticker string, bars []model.OHLCV, p Profile) (*Assessment, error) {
	ind, err := ComputeIndicators(bars, p)
	if err != nil {
		return nil, err
	}
	flags := Classify(ind, p)
	return &Assessment{
		Ticker:     ticker,
		Indicators: ind,
		Flags:      flags,
		Score:      Score(flags, p.Weights),
		Risk:       ComputeRisk(ind, p),
	}, nil
}

// NeedsSentiment reports whether the assessment scores high enough to be worth a news lookup.
func NeedsSentiment(a *Assessment, p Profile) bool {
	return p.Sentiment.Enabled && a.Score >= p.Sentiment.CheckThreshold
}

// Finalize applies the optional news adjustment and maps the result to an action.
// news is nil when no lookup was made.
func Finalize(a *Assessment, news *model.Sentiment, p Profile) model.Record {
	score := a.Score
	narrative := "-"
	newsScore := 0
	if news != nil {
		narrative = news.Narrative
		newsScore = news.Score
		switch {
		case newsScore > 0:
			score += p.Sentiment.PositiveBonus
		case newsScore < 0:
			score -= p.Sentiment.NegativePenalty
		}
	}

	return model.Record{
		Ticker:     a.Ticker,
		Price:      a.Indicators.Price,
		Indicators: a.Indicators,
		Flags:      a.Flags,
		Trend:      Trend(a.Flags),
		Score:      score,
		Action:     mapTier(p.Tiers, score, a.Risk.RiskReward),
		News:       narrative,
		NewsScore:  newsScore,
		Risk:       a.Risk,
		Rationale:  rationale(a.Flags, p.Weights, newsScore),
	}
}

// mapTier walks the descending tier table and returns the first action whose
// score and reward/risk floors are both met.
func mapTier(tiers []Tier, score int, rr float64) model.Action {
	for _, t := range tiers {
		if score >= t.MinScore && rr >= t.MinRiskReward {
			return t.Action
		}
	}
	return DefaultAction
}

// rationale lists the flags that contributed to the score, in a fixed order.
func rationale(f model.Flags, w Weights, newsScore int) string {
	var reasons []string
	switch {
	case f.SuperUptrend:
		reasons = append(reasons, "Strong Trend")
	case f.ModerateUptrend:
		reasons = append(reasons, "Uptrend")
	}
	for _, c := range contributions(f, w) {
		if c.set && c.weight != 0 {
			reasons = append(reasons, c.label)
		}
	}
	if newsScore > 0 {
		reasons = append(reasons, "Positive News")
	}
	if len(reasons) == 0 {
		return "-"
	}
	return strings.Join(reasons, ", ")
}

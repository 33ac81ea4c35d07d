package model

import "encoding/json"

// Action is the discrete classification of a ticker.
type Action string

const (
	ActionStrongBuy Action = "STRONG BUY"
	ActionBuy       Action = "BUY"
	ActionWatchlist Action = "WATCHLIST"
)

// TrendStatus describes the moving-average alignment.
type TrendStatus string

const (
	TrendSuper    TrendStatus = "SUPER UPTREND"
	TrendUp       TrendStatus = "Uptrend"
	TrendSideways TrendStatus = "Sideways/Down"
)

// Flags holds the boolean signal conditions derived from an indicator set.
type Flags struct {
	SuperUptrend          bool `json:"is_super_uptrend"`
	ModerateUptrend       bool `json:"is_moderate_uptrend"`
	Consolidating         bool `json:"is_consolidating"`
	VolatilityContracting bool `json:"is_vcp"`
	Spring                bool `json:"is_spring"`
	VolumeSpike           bool `json:"is_volume_spike"`
	RSIHealthy            bool `json:"is_rsi_healthy"`
	MACDBullish           bool `json:"is_macd_bullish"`
	OBVRising             bool `json:"is_obv_rising"`
}

// Map returns the flags keyed by their published names.
func (f Flags) Map() map[string]bool {
	return map[string]bool{
		"is_super_uptrend":    f.SuperUptrend,
		"is_moderate_uptrend": f.ModerateUptrend,
		"is_consolidating":    f.Consolidating,
		"is_vcp":              f.VolatilityContracting,
		"is_spring":           f.Spring,
		"is_volume_spike":     f.VolumeSpike,
		"is_rsi_healthy":      f.RSIHealthy,
		"is_macd_bullish":     f.MACDBullish,
		"is_obv_rising":       f.OBVRising,
	}
}

// RiskLevels holds the stop-loss, targets and derived ratios of one ticker.
type RiskLevels struct {
	StopLoss         float64 `json:"stop_loss"`
	NearTarget       float64 `json:"near_target"`
	StretchTarget    float64 `json:"stretch_target"`
	TargetNote       string  `json:"target_note"` // "Fib 0.618" or "Blue Sky"
	Risk             float64 `json:"risk"`
	Reward           float64 `json:"reward"`
	RiskReward       float64 `json:"risk_reward"`
	NearUpsidePct    float64 `json:"near_upside_pct"`
	StretchUpsidePct float64 `json:"stretch_upside_pct"`
}

// Record is the final per-ticker result of one scan. It is never mutated after creation.
type Record struct {
	Ticker     string      `json:"ticker"`
	Price      float64     `json:"price"`
	Indicators Indicators  `json:"indicators"`
	Flags      Flags       `json:"flags"`
	Trend      TrendStatus `json:"trend"`
	Score      int         `json:"score"`
	Action     Action      `json:"action"`
	News       string      `json:"news"`
	NewsScore  int         `json:"news_score"`
	Risk       RiskLevels  `json:"risk"`
	Rationale  string      `json:"rationale"`
}

// SkipKind classifies why a ticker produced no record.
type SkipKind string

const (
	SkipInsufficientHistory SkipKind = "insufficient_history"
	SkipFetchFailed         SkipKind = "fetch_failed"
	SkipSentimentFailed     SkipKind = "sentiment_failed"
	SkipInvalidIndicator    SkipKind = "invalid_indicator"
)

// SkipReason records a ticker dropped from a group run.
type SkipReason struct {
	Ticker string
	Kind   SkipKind
	Err    error
}

func (s SkipReason) Error() string {
	if s.Err == nil {
		return s.Ticker + ": " + string(s.Kind)
	}
	return s.Ticker + ": " + string(s.Kind) + ": " + s.Err.Error()
}

func (s SkipReason) Unwrap() error { return s.Err }

// MarshalJSON renders the error as text.
func (s SkipReason) MarshalJSON() ([]byte, error) {
	out := struct {
		Ticker string   `json:"ticker"`
		Kind   SkipKind `json:"kind"`
		Error  string   `json:"error,omitempty"`
	}{Ticker: s.Ticker, Kind: s.Kind}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return json.Marshal(out)
}

// Sentiment is the outcome of a news lookup for one ticker.
type Sentiment struct {
	Narrative string `json:"narrative"`
	Score     int    `json:"score"`
}

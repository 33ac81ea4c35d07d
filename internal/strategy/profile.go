package strategy

import (
	"errors"
	"fmt"
	"sort"

	"MarketScreener/internal/calculator"
	"MarketScreener/internal/model"
)

// Spring reference levels.
const (
	SpringRefMA50    = "ma50"
	SpringRefSupport = "support"
)

// Volume spike modes.
const (
	VolumeModeCurrent = "current" // today's volume vs slow average
	VolumeModeAverage = "average" // fast average vs slow average
)

// RSI methods.
const (
	RSISimple = "simple"
	RSIWilder = "wilder"
)

// Windows holds every lookback used by the indicator battery. Offsets are
// expressed as positive bar counts and applied as negative window offsets.
type Windows struct {
	MAFast           int    `yaml:"ma_fast"`
	MAMid            int    `yaml:"ma_mid"`
	MALong           int    `yaml:"ma_long"`
	MATrend          int    `yaml:"ma_trend"`
	SlopeOffset      int    `yaml:"slope_offset"`
	RSIPeriod        int    `yaml:"rsi_period"`
	RSIMethod        string `yaml:"rsi_method"`
	MACDFast         int    `yaml:"macd_fast"`
	MACDSlow         int    `yaml:"macd_slow"`
	MACDSignal       int    `yaml:"macd_signal"`
	ATRPeriod        int    `yaml:"atr_period"`
	ATRCompareOffset int    `yaml:"atr_compare_offset"`
	OBVLookback      int    `yaml:"obv_lookback"`
	RangeLookback    int    `yaml:"range_lookback"`
	SpringLookback   int    `yaml:"spring_lookback"`
	VolumeFast       int    `yaml:"volume_fast"`
	VolumeSlow       int    `yaml:"volume_slow"`
}

// Thresholds holds the classifier cutoffs.
type Thresholds struct {
	ConsolidationCutoff float64 `yaml:"consolidation_cutoff"`
	RSILow              float64 `yaml:"rsi_low"`
	RSIHigh             float64 `yaml:"rsi_high"`
	SpringReference     string  `yaml:"spring_reference"`
	SpringTolerance     float64 `yaml:"spring_tolerance"`
	VolumeMode          string  `yaml:"volume_mode"`
	VolumeMultiplier    float64 `yaml:"volume_multiplier"`
}

// Weights maps each flag to its score contribution. Exactly one of the
// three trend weights applies.
type Weights struct {
	SuperUptrend          int `yaml:"super_uptrend"`
	ModerateUptrend       int `yaml:"moderate_uptrend"`
	NoUptrend             int `yaml:"no_uptrend"`
	Consolidating         int `yaml:"consolidating"`
	VolatilityContracting int `yaml:"vcp"`
	Spring                int `yaml:"spring"`
	VolumeSpike           int `yaml:"volume_spike"`
	RSIHealthy            int `yaml:"rsi_healthy"`
	MACDBullish           int `yaml:"macd_bullish"`
	OBVRising             int `yaml:"obv_rising"`
}

// SentimentPolicy controls when and how news sentiment adjusts the score.
type SentimentPolicy struct {
	Enabled         bool `yaml:"enabled"`
	CheckThreshold  int  `yaml:"check_threshold"`
	PositiveBonus   int  `yaml:"positive_bonus"`
	NegativePenalty int  `yaml:"negative_penalty"`
	NeutralOnError  bool `yaml:"neutral_on_error"`
}

// RiskConfig controls stop-loss placement.
type RiskConfig struct {
	StopSplit float64 `yaml:"stop_split"` // fraction of the range above which MA50 is the stop
	Epsilon   float64 `yaml:"epsilon"`    // substitute risk when the stop is at or above price
}

// Tier is one row of the descending action table.
type Tier struct {
	Action        model.Action `yaml:"action"`
	MinScore      int          `yaml:"min_score"`
	MinRiskReward float64      `yaml:"min_rr"`
}

// Profile is a complete set of windows, thresholds and weights for one scan variant.
type Profile struct {
	Name        string                  `yaml:"-"`
	MinBars     int                     `yaml:"min_bars"`
	HistoryDays int                     `yaml:"history_days"`
	Windows     Windows                 `yaml:"windows"`
	Thresholds  Thresholds              `yaml:"thresholds"`
	Weights     Weights                 `yaml:"weights"`
	Sentiment   SentimentPolicy         `yaml:"sentiment"`
	Targets     calculator.TargetConfig `yaml:"targets"`
	Risk        RiskConfig              `yaml:"risk"`
	Tiers       []Tier                  `yaml:"tiers"`
}

// Preset names.
const (
	PresetMinervini = "minervini"
	PresetWyckoff   = "wyckoff"
)

// DefaultProfile returns the trend-template profile used when none is configured.
func DefaultProfile() Profile {
	return Profile{
		Name:        PresetMinervini,
		MinBars:     200,
		HistoryDays: 730,
		Windows: Windows{
			MAFast:           20,
			MAMid:            50,
			MALong:           150,
			MATrend:          200,
			SlopeOffset:      22,
			RSIPeriod:        14,
			RSIMethod:        RSISimple,
			MACDFast:         12,
			MACDSlow:         26,
			MACDSignal:       9,
			ATRPeriod:        14,
			ATRCompareOffset: 25,
			OBVLookback:      20,
			RangeLookback:    60,
			SpringLookback:   5,
			VolumeFast:       10,
			VolumeSlow:       50,
		},
		Thresholds: Thresholds{
			ConsolidationCutoff: 0.40,
			RSILow:              40,
			RSIHigh:             70,
			SpringReference:     SpringRefMA50,
			SpringTolerance:     1.0,
			VolumeMode:          VolumeModeCurrent,
			VolumeMultiplier:    1.5,
		},
		Weights: Weights{
			SuperUptrend:          40,
			ModerateUptrend:       20,
			NoUptrend:             -20,
			Consolidating:         15,
			VolatilityContracting: 15,
			Spring:                15,
			VolumeSpike:           10,
			RSIHealthy:            5,
		},
		Sentiment: SentimentPolicy{
			Enabled:         true,
			CheckThreshold:  70,
			PositiveBonus:   10,
			NegativePenalty: 15,
		},
		Targets: calculator.DefaultTargetConfig(),
		Risk: RiskConfig{
			StopSplit: 0.5,
			Epsilon:   0.1,
		},
		Tiers: []Tier{
			{Action: model.ActionStrongBuy, MinScore: 85, MinRiskReward: 2.0},
			{Action: model.ActionBuy, MinScore: 70, MinRiskReward: 1.5},
		},
	}
}

// WyckoffProfile returns the accumulation-scan profile: longer range,
// tighter base, support-based spring and average volume expansion.
func WyckoffProfile() Profile {
	p := DefaultProfile()
	p.Name = PresetWyckoff
	p.Windows.RangeLookback = 120
	p.Thresholds = Thresholds{
		ConsolidationCutoff: 0.35,
		RSILow:              40,
		RSIHigh:             60,
		SpringReference:     SpringRefSupport,
		SpringTolerance:     0.98,
		VolumeMode:          VolumeModeAverage,
		VolumeMultiplier:    1.0,
	}
	p.Weights = Weights{
		SuperUptrend:          30,
		ModerateUptrend:       15,
		NoUptrend:             -20,
		Consolidating:         20,
		VolatilityContracting: 15,
		Spring:                20,
		VolumeSpike:           15,
		RSIHealthy:            5,
		MACDBullish:           5,
		OBVRising:             10,
	}
	p.Sentiment.CheckThreshold = 65
	p.Sentiment.NegativePenalty = 20
	p.Tiers = []Tier{
		{Action: model.ActionStrongBuy, MinScore: 85, MinRiskReward: 2.0},
		{Action: model.ActionBuy, MinScore: 65, MinRiskReward: 2.0},
	}
	return p
}

// Preset returns a named built-in profile.
func Preset(name string) (Profile, bool) {
	switch name {
	case "", PresetMinervini:
		return DefaultProfile(), true
	case PresetWyckoff:
		return WyckoffProfile(), true
	}
	return Profile{}, false
}

// RequiredBars is the number of bars the indicator battery needs for this profile.
func (p Profile) RequiredBars() int {
	w := p.Windows
	need := []int{
		p.MinBars,
		w.MAFast, w.MAMid, w.MALong,
		w.MATrend + w.SlopeOffset,
		w.RSIPeriod + 1,
		w.MACDSlow + w.MACDSignal - 1,
		w.ATRPeriod + w.ATRCompareOffset,
		w.OBVLookback + 1,
		w.RangeLookback + w.SpringLookback,
		w.VolumeFast, w.VolumeSlow,
	}
	sort.Ints(need)
	return need[len(need)-1]
}

// Validate checks the profile for values the battery cannot work with.
func (p Profile) Validate() error {
	w := p.Windows
	for name, v := range map[string]int{
		"ma_fast": w.MAFast, "ma_mid": w.MAMid, "ma_long": w.MALong, "ma_trend": w.MATrend,
		"rsi_period": w.RSIPeriod, "macd_fast": w.MACDFast, "macd_slow": w.MACDSlow,
		"macd_signal": w.MACDSignal, "atr_period": w.ATRPeriod, "obv_lookback": w.OBVLookback,
		"range_lookback": w.RangeLookback, "spring_lookback": w.SpringLookback,
		"volume_fast": w.VolumeFast, "volume_slow": w.VolumeSlow,
	} {
		if v <= 0 {
			return fmt.Errorf("profile %s: windows.%s must be positive", p.Name, name)
		}
	}
	if w.SlopeOffset <= 0 || w.ATRCompareOffset <= 0 {
		return fmt.Errorf("profile %s: slope_offset and atr_compare_offset must be positive", p.Name)
	}
	if w.MACDSlow <= w.MACDFast {
		return fmt.Errorf("profile %s: macd_slow must exceed macd_fast", p.Name)
	}
	if w.RSIMethod != RSISimple && w.RSIMethod != RSIWilder {
		return fmt.Errorf("profile %s: unknown rsi_method %q", p.Name, w.RSIMethod)
	}

	t := p.Thresholds
	if t.ConsolidationCutoff <= 0 {
		return fmt.Errorf("profile %s: consolidation_cutoff must be positive", p.Name)
	}
	if t.RSILow >= t.RSIHigh {
		return fmt.Errorf("profile %s: rsi_low must be below rsi_high", p.Name)
	}
	if t.SpringReference != SpringRefMA50 && t.SpringReference != SpringRefSupport {
		return fmt.Errorf("profile %s: unknown spring_reference %q", p.Name, t.SpringReference)
	}
	if t.VolumeMode != VolumeModeCurrent && t.VolumeMode != VolumeModeAverage {
		return fmt.Errorf("profile %s: unknown volume_mode %q", p.Name, t.VolumeMode)
	}

	if len(p.Targets.Ratios) == 0 {
		return fmt.Errorf("profile %s: targets.ratios must not be empty", p.Name)
	}
	if !sort.Float64sAreSorted(p.Targets.Ratios) {
		return fmt.Errorf("profile %s: targets.ratios must be ascending", p.Name)
	}
	if p.Risk.Epsilon <= 0 {
		return fmt.Errorf("profile %s: risk.epsilon must be positive", p.Name)
	}

	if len(p.Tiers) == 0 {
		return errors.New("profile " + p.Name + ": at least one tier is required")
	}
	for i := 1; i < len(p.Tiers); i++ {
		if p.Tiers[i].MinScore > p.Tiers[i-1].MinScore {
			return fmt.Errorf("profile %s: tiers must be ordered by descending min_score", p.Name)
		}
	}
	return nil
}

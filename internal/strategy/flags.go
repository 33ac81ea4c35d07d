package strategy

import "MarketScreener/internal/model"

// Classify derives the signal flags from an indicator set.
func Classify(ind model.Indicators, p Profile) model.Flags {
	t := p.Thresholds

	aboveLongMAs := ind.Price > ind.MA150 && ind.Price > ind.MA200
	trendRising := ind.MA200 > ind.MA200Prev
	super := aboveLongMAs && ind.MA150 > ind.MA200 && trendRising && ind.Price > ind.MA50

	return model.Flags{
		SuperUptrend:          super,
		ModerateUptrend:       !super && aboveLongMAs && trendRising,
		Consolidating:         isConsolidating(ind, t),
		VolatilityContracting: ind.ATR < ind.ATRPrev,
		Spring:                isSpring(ind, t),
		VolumeSpike:           isVolumeSpike(ind, t),
		RSIHealthy:            ind.RSI > t.RSILow && ind.RSI < t.RSIHigh,
		MACDBullish:           ind.MACD > ind.MACDSignal,
		OBVRising:             ind.OBV > ind.OBVPrev,
	}
}

// isConsolidating reports a base: the rolling range is narrow relative to price.
func isConsolidating(ind model.Indicators, t Thresholds) bool {
	if ind.Price <= 0 {
		return false
	}
	return ind.RangeSpan()/ind.Price < t.ConsolidationCutoff
}

// isSpring reports a shakeout: the recent low dipped through the reference
// level while price closed back above it.
func isSpring(ind model.Indicators, t Thresholds) bool {
	ref := ind.MA50
	if t.SpringReference == SpringRefSupport {
		ref = ind.Support
	}
	return ind.Low5 < ref*t.SpringTolerance && ind.Price > ref
}

func isVolumeSpike(ind model.Indicators, t Thresholds) bool {
	vol := ind.Volume
	if t.VolumeMode == VolumeModeAverage {
		vol = ind.VolumeMA10
	}
	return vol > ind.VolumeMA50*t.VolumeMultiplier
}

// Trend maps the trend flags to a status label.
func Trend(f model.Flags) model.TrendStatus {
	switch {
	case f.SuperUptrend:
		return model.TrendSuper
	case f.ModerateUptrend:
		return model.TrendUp
	default:
		return model.TrendSideways
	}
}

// Score sums the weights of the set flags. It is not clamped.
func Score(f model.Flags, w Weights) int {
	var score int
	switch {
	case f.SuperUptrend:
		score += w.SuperUptrend
	case f.ModerateUptrend:
		score += w.ModerateUptrend
	default:
		score += w.NoUptrend
	}
	for _, c := range contributions(f, w) {
		if c.set {
			score += c.weight
		}
	}
	return score
}

type contribution struct {
	label  string
	set    bool
	weight int
}

// contributions lists the secondary flags in rationale order.
func contributions(f model.Flags, w Weights) []contribution {
	return []contribution{
		{"Base", f.Consolidating, w.Consolidating},
		{"VCP", f.VolatilityContracting, w.VolatilityContracting},
		{"Spring", f.Spring, w.Spring},
		{"Vol Spike", f.VolumeSpike, w.VolumeSpike},
		{"Healthy RSI", f.RSIHealthy, w.RSIHealthy},
		{"MACD Cross", f.MACDBullish, w.MACDBullish},
		{"OBV Up", f.OBVRising, w.OBVRising},
	}
}

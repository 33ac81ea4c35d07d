package strategy

import (
	"MarketScreener/internal/calculator"
	"MarketScreener/internal/model"
)

// ComputeRisk places the stop-loss and targets and derives the reward/risk ratio.
//
// The stop sits at MA50 when price is in the upper part of the range and one
// ATR under the range low otherwise. A stop at or above price substitutes
// Risk.Epsilon for the risk so the ratio stays finite.
func ComputeRisk(ind model.Indicators, p Profile) model.RiskLevels {
	low, span := ind.RangeLow, ind.RangeSpan()

	var stop float64
	if ind.Price > low+span*p.Risk.StopSplit {
		stop = ind.MA50
	} else {
		stop = low - ind.ATR
	}

	targets := calculator.PickTargets(ind.Price, low, ind.RangeHigh, p.Targets)

	risk := ind.Price - stop
	if risk <= 0 {
		risk = p.Risk.Epsilon
	}
	reward := targets.Near - ind.Price

	levels := model.RiskLevels{
		StopLoss:      stop,
		NearTarget:    targets.Near,
		StretchTarget: targets.Stretch,
		TargetNote:    targets.Note,
		Risk:          risk,
		Reward:        reward,
		RiskReward:    reward / risk,
	}
	if ind.Price > 0 {
		levels.NearUpsidePct = (targets.Near - ind.Price) / ind.Price * 100
		levels.StretchUpsidePct = (targets.Stretch - ind.Price) / ind.Price * 100
	}
	return levels
}

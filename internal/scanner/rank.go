package scanner

import (
	"sort"

	"MarketScreener/internal/model"
)

// Rank orders records by Score descending, then RiskReward descending, then
// Ticker ascending. The order is total, so equal inputs always rank the same.
func Rank(records []model.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Risk.RiskReward != b.Risk.RiskReward {
			return a.Risk.RiskReward > b.Risk.RiskReward
		}
		return a.Ticker < b.Ticker
	})
}

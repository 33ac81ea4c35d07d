package collector

import (
	"math"
	"sort"

	"MarketScreener/internal/model"
)

// NormalizeBars drops bars without a usable price, orders the rest
// chronologically and keeps the last bar seen for each trading date.
func NormalizeBars(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		if !validPrice(b.Open) || !validPrice(b.High) || !validPrice(b.Low) || !validPrice(b.Close) {
			continue
		}
		if math.IsNaN(b.Volume) || b.Volume < 0 {
			b.Volume = 0
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	deduped := out[:0]
	for _, b := range out {
		if n := len(deduped); n > 0 && sameDay(deduped[n-1], b) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sameDay(a, b model.OHLCV) bool {
	ay, am, ad := a.Time.UTC().Date()
	by, bm, bd := b.Time.UTC().Date()
	return ay == by && am == bm && ad == bd
}

package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScreener/internal/calculator"
	"MarketScreener/internal/model"
)

var start = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

// risingSeries climbs slowly with a shrinking daily range and ends on a volume spike.
func risingSeries(n int) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		c := 100 + 0.05*float64(i)
		s := 1 - 0.003*float64(i)
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c + s, Low: c - s, Close: c, Volume: 1000}
	}
	bars[n-1].Volume = 3000
	return bars
}

func flatSeries(n int, price float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return bars
}

func TestEvaluate_RisingSeriesIsBuy(t *testing.T) {
	p := DefaultProfile()
	a, err := Evaluate("AAA", risingSeries(260), p)
	require.NoError(t, err)

	ind := a.Indicators
	assert.InDelta(t, 112.95, ind.Price, 1e-9)
	assert.InDelta(t, 111.725, ind.MA50, 1e-9)
	assert.InDelta(t, 107.975, ind.MA200, 1e-9)
	assert.InDelta(t, 106.875, ind.MA200Prev, 1e-9)
	assert.Equal(t, 100.0, ind.RSI)
	assert.InDelta(t, 1040, ind.VolumeMA50, 1e-9)

	f := a.Flags
	assert.True(t, f.SuperUptrend)
	assert.False(t, f.ModerateUptrend)
	assert.True(t, f.Consolidating)
	assert.True(t, f.VolatilityContracting)
	assert.False(t, f.Spring)
	assert.True(t, f.VolumeSpike)
	assert.False(t, f.RSIHealthy)
	assert.True(t, f.OBVRising)
	assert.Equal(t, 80, a.Score)
	assert.True(t, NeedsSentiment(a, p))

	assert.InDelta(t, 111.725, a.Risk.StopLoss, 1e-9)
	assert.InDelta(t, 115.381114, a.Risk.NearTarget, 1e-6)
	assert.InDelta(t, 116.746, a.Risk.StretchTarget, 1e-6)
	assert.Equal(t, "Fib 1.618", a.Risk.TargetNote)
	assert.InDelta(t, 1.9846, a.Risk.RiskReward, 1e-4)

	rec := Finalize(a, nil, p)
	assert.Equal(t, model.ActionBuy, rec.Action)
	assert.Equal(t, model.TrendSuper, rec.Trend)
	assert.Equal(t, "-", rec.News)
	assert.Equal(t, "Strong Trend, Base, VCP, Vol Spike", rec.Rationale)
}

func TestEvaluate_FlatSeriesIsWatchlist(t *testing.T) {
	p := DefaultProfile()
	a, err := Evaluate("FLAT", flatSeries(260, 100), p)
	require.NoError(t, err)

	assert.Equal(t, 50.0, a.Indicators.RSI)
	assert.False(t, a.Flags.SuperUptrend)
	assert.False(t, a.Flags.ModerateUptrend)
	assert.False(t, a.Flags.VolumeSpike)
	assert.False(t, a.Flags.VolatilityContracting)
	assert.False(t, a.Flags.Spring)
	assert.True(t, a.Flags.RSIHealthy)
	// no-uptrend penalty + base + healthy RSI
	assert.Equal(t, 0, a.Score)
	assert.False(t, NeedsSentiment(a, p))

	assert.Equal(t, "Blue Sky", a.Risk.TargetNote)
	assert.InDelta(t, 0.1, a.Risk.Risk, 1e-12)
	assert.InDelta(t, 50.0, a.Risk.RiskReward, 1e-9)

	rec := Finalize(a, nil, p)
	assert.Equal(t, model.ActionWatchlist, rec.Action)
	assert.Equal(t, model.TrendSideways, rec.Trend)
	assert.Equal(t, "Base, Healthy RSI", rec.Rationale)
}

func TestEvaluate_ShortHistory(t *testing.T) {
	for _, n := range []int{0, 50, 199, 221} {
		_, err := Evaluate("NEW", risingSeries(max(n, 1))[:n], DefaultProfile())
		assert.ErrorIs(t, err, calculator.ErrInsufficientData, "bars=%d", n)
	}
}

func TestEvaluate_StopAbovePrice(t *testing.T) {
	// last bar reports a close under its own low
	bars := flatSeries(260, 100)
	bars[len(bars)-1].Close = 90

	a, err := Evaluate("GLITCH", bars, DefaultProfile())
	require.NoError(t, err)

	assert.Greater(t, a.Risk.StopLoss, a.Indicators.Price)
	assert.InDelta(t, 0.1, a.Risk.Risk, 1e-12)
	assert.False(t, math.IsInf(a.Risk.RiskReward, 0))
	assert.False(t, math.IsNaN(a.Risk.RiskReward))
	assert.InDelta(t, 100.0, a.Risk.RiskReward, 1e-9)
}

func TestEvaluate_Idempotent(t *testing.T) {
	p := DefaultProfile()
	bars := risingSeries(300)

	a1, err := Evaluate("AAA", bars, p)
	require.NoError(t, err)
	a2, err := Evaluate("AAA", bars, p)
	require.NoError(t, err)

	news := &model.Sentiment{Narrative: "POSITIVE NEWS | record profit", Score: 2}
	assert.Equal(t, Finalize(a1, news, p), Finalize(a2, news, p))
}

func TestFinalize_Sentiment(t *testing.T) {
	p := DefaultProfile()
	a, err := Evaluate("AAA", risingSeries(260), p)
	require.NoError(t, err)

	tests := []struct {
		name      string
		news      *model.Sentiment
		wantScore int
		rationale string
	}{
		{"no lookup", nil, 80, "Strong Trend, Base, VCP, Vol Spike"},
		{"neutral", &model.Sentiment{Narrative: "NEUTRAL", Score: 0}, 80, "Strong Trend, Base, VCP, Vol Spike"},
		{"positive", &model.Sentiment{Narrative: "POSITIVE NEWS | x", Score: 1}, 90, "Strong Trend, Base, VCP, Vol Spike, Positive News"},
		{"negative", &model.Sentiment{Narrative: "NEGATIVE NEWS | y", Score: -2}, 65, "Strong Trend, Base, VCP, Vol Spike"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Finalize(a, tt.news, p)
			assert.Equal(t, tt.wantScore, rec.Score)
			assert.Equal(t, tt.rationale, rec.Rationale)
		})
	}

	// the assessment itself is untouched
	assert.Equal(t, 80, a.Score)
}

func TestMapTier(t *testing.T) {
	tiers := DefaultProfile().Tiers
	tests := []struct {
		score int
		rr    float64
		want  model.Action
	}{
		{85, 2.0, model.ActionStrongBuy},
		{120, 10, model.ActionStrongBuy},
		{85, 1.99, model.ActionBuy},
		{70, 1.5, model.ActionBuy},
		{84, 3, model.ActionBuy},
		{69, 5, model.ActionWatchlist},
		{100, 1.49, model.ActionWatchlist},
		{-20, 50, model.ActionWatchlist},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapTier(tiers, tt.score, tt.rr), "score=%d rr=%.2f", tt.score, tt.rr)
	}
}

func TestClassify_WyckoffSpring(t *testing.T) {
	p := WyckoffProfile()
	base := model.Indicators{Price: 101, MA50: 120, Support: 100, Low5: 97.5}

	assert.True(t, Classify(base, p).Spring)

	shallow := base
	shallow.Low5 = 98.5
	assert.False(t, Classify(shallow, p).Spring)

	below := base
	below.Price = 99
	assert.False(t, Classify(below, p).Spring)

	// the default profile measures the dip against MA50
	assert.False(t, Classify(base, DefaultProfile()).Spring)
}

func TestClassify_VolumeModes(t *testing.T) {
	ind := model.Indicators{Volume: 1400, VolumeMA10: 1100, VolumeMA50: 1000}

	assert.False(t, Classify(ind, DefaultProfile()).VolumeSpike)
	assert.True(t, Classify(ind, WyckoffProfile()).VolumeSpike)

	ind.Volume = 1600
	assert.True(t, Classify(ind, DefaultProfile()).VolumeSpike)
}

func TestScore_Weights(t *testing.T) {
	w := WyckoffProfile().Weights
	all := model.Flags{
		SuperUptrend: true, Consolidating: true, VolatilityContracting: true, Spring: true,
		VolumeSpike: true, RSIHealthy: true, MACDBullish: true, OBVRising: true,
	}
	assert.Equal(t, 30+20+15+20+15+5+5+10, Score(all, w))
	assert.Equal(t, 15, Score(model.Flags{ModerateUptrend: true}, w))
	assert.Equal(t, -20, Score(model.Flags{}, w))
}

package calculator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6}

	sma, err := CalculateSMA(prices, 3, 0)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, sma, 1e-9)

	prev, err := CalculateSMA(prices, 3, -1)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, prev, 1e-9)

	_, err = CalculateSMA(prices, 7, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCalculateRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		period int
		want   float64
	}{
		{"all gains", []float64{1, 2, 3, 4, 5}, 4, 100},
		{"all losses", []float64{5, 4, 3, 2, 1}, 4, 0},
		{"flat", []float64{7, 7, 7, 7, 7}, 4, 50},
		{"mixed", []float64{44, 45, 44, 46}, 3, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateRSI(tt.closes, tt.period, 0)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, err := CalculateRSI([]float64{1, 2, 3}, 14, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCalculateRSI_Bounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	closes := sequence(500, func(int) float64 { return 100 + rng.NormFloat64()*10 })
	for offset := 0; offset > -400; offset -= 13 {
		rsi, err := CalculateRSI(closes, 14, offset)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rsi, 0.0)
		assert.LessOrEqual(t, rsi, 100.0)
	}
}

func TestCalculateWilderRSI(t *testing.T) {
	rising := sequence(40, func(i int) float64 { return float64(100 + i) })
	rsi, err := CalculateWilderRSI(rising, 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rsi)

	_, err = CalculateWilderRSI(rising[:10], 14)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCalculateMACD(t *testing.T) {
	accelerating := sequence(120, func(i int) float64 { return 100 + 0.05*float64(i*i) })
	line, sig, err := CalculateMACD(accelerating, 12, 26, 9)
	require.NoError(t, err)
	assert.Greater(t, line, 0.0)
	assert.Greater(t, line, sig)

	decelerating := sequence(120, func(i int) float64 { return 1000 - 0.05*float64(i*i) })
	line, sig, err = CalculateMACD(decelerating, 12, 26, 9)
	require.NoError(t, err)
	assert.Less(t, line, sig)

	_, _, err = CalculateMACD(accelerating[:20], 12, 26, 9)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, _, err = CalculateMACD(accelerating, 26, 12, 9)
	assert.Error(t, err)
}

func TestCalculateOBV(t *testing.T) {
	bars := makeBars([]float64{10, 11, 10, 12})
	for i, v := range []float64{100, 200, 50, 300} {
		bars[i].Volume = v
	}
	obv := CalculateOBV(NewWindow(bars))
	assert.Equal(t, []float64{100, 300, 250, 550}, obv)

	now, then, rising, err := OBVTrend(NewWindow(bars), 2)
	require.NoError(t, err)
	assert.Equal(t, 550.0, now)
	assert.Equal(t, 300.0, then)
	assert.True(t, rising)

	_, _, _, err = OBVTrend(NewWindow(bars), 20)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestRollingRange(t *testing.T) {
	closes := sequence(100, func(i int) float64 { return 50 + 10*math.Sin(float64(i)/5) })
	w := NewWindow(makeBars(closes))

	high, low, err := RollingRange(w, 60, 0)
	require.NoError(t, err)
	assert.Greater(t, high, low)

	_, _, err = RollingRange(w, 120, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

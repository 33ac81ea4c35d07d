package calculator

import (
	"errors"
	"fmt"
)

// CalculateRSI computes RSI from the simple average gain and loss of the last
// period close-to-close changes ending at offset. A series with no losses is
// fully overbought (100); a series with no changes at all is neutral (50).
func CalculateRSI(closes []float64, period, offset int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	window, err := Trailing(closes, period+1, offset)
	if err != nil {
		return 0, fmt.Errorf("rsi(%d): %w", period, err)
	}

	var gain, loss float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	return rsiFromAverages(gain/float64(period), loss/float64(period)), nil
}

// CalculateWilderRSI computes the Wilder-smoothed RSI over the whole series.
// Requires at least period+1 closes.
func CalculateWilderRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return 0, fmt.Errorf("wilder rsi(%d): %w: have %d closes", period, ErrInsufficientData, len(closes))
	}

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	return rsiFromAverages(avgGain, avgLoss), nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

package calculator

import "fmt"

// RollingRange returns the highest high and lowest low of the lookback bars
// ending at offset.
func RollingRange(w *Window, lookback, offset int) (high, low float64, err error) {
	high, err = w.Max(FieldHigh, lookback, offset)
	if err != nil {
		return 0, 0, fmt.Errorf("rolling high(%d): %w", lookback, err)
	}
	low, err = w.Min(FieldLow, lookback, offset)
	if err != nil {
		return 0, 0, fmt.Errorf("rolling low(%d): %w", lookback, err)
	}
	return high, low, nil
}

package calculator

import (
	"fmt"

	"github.com/markcheno/go-talib"
)

// CalculateOBV returns the running on-balance volume of the window's bars.
func CalculateOBV(w *Window) []float64 {
	if w.Len() == 0 {
		return nil
	}
	return talib.Obv(w.Values(FieldClose), w.Values(FieldVolume))
}

// OBVTrend compares the current on-balance volume with its value lookback bars earlier.
func OBVTrend(w *Window, lookback int) (now, then float64, rising bool, err error) {
	obv := CalculateOBV(w)
	if now, err = At(obv, 0); err != nil {
		return 0, 0, false, fmt.Errorf("obv: %w", err)
	}
	if then, err = At(obv, -lookback); err != nil {
		return 0, 0, false, fmt.Errorf("obv %d bars back: %w", lookback, err)
	}
	return now, then, now > then, nil
}

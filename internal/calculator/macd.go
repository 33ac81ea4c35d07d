package calculator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateMACD returns the MACD line and its signal line at the last close.
func CalculateMACD(closes []float64, fast, slow, signal int) (line, sig float64, err error) {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return 0, 0, fmt.Errorf("macd(%d,%d,%d): invalid periods", fast, slow, signal)
	}
	if need := slow + signal - 1; len(closes) < need {
		return 0, 0, fmt.Errorf("macd(%d,%d,%d): %w: need %d closes, have %d",
			fast, slow, signal, ErrInsufficientData, need, len(closes))
	}
	macd, macdSignal, _ := talib.Macd(closes, fast, slow, signal)
	n := len(closes) - 1
	line, sig = macd[n], macdSignal[n]
	if math.IsNaN(line) || math.IsNaN(sig) {
		return 0, 0, fmt.Errorf("macd(%d,%d,%d): %w", fast, slow, signal, ErrInsufficientData)
	}
	return line, sig, nil
}

package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"MarketScreener/internal/model"
)

// ErrInsufficientData is returned when a window reaches back before the first bar.
var ErrInsufficientData = errors.New("insufficient data")

// Field selects a column of a bar.
type Field int

const (
	FieldOpen Field = iota
	FieldHigh
	FieldLow
	FieldClose
	FieldVolume
)

// Window exposes trailing reductions over a bar series.
//
// Offsets address the bar a window ends on: 0 is the most recent bar and a
// negative offset k ends the window |k| bars earlier. A window of size w at
// offset k therefore needs at least w-k bars.
type Window struct {
	bars    []model.OHLCV
	columns map[Field][]float64
	tr      []float64
}

// NewWindow wraps bars, which must be in chronological order.
func NewWindow(bars []model.OHLCV) *Window {
	return &Window{bars: bars, columns: make(map[Field][]float64, 5)}
}

// Len returns the number of bars.
func (w *Window) Len() int { return len(w.bars) }

// Values returns the full column for a field.
func (w *Window) Values(f Field) []float64 {
	if col, ok := w.columns[f]; ok {
		return col
	}
	col := make([]float64, len(w.bars))
	for i, b := range w.bars {
		switch f {
		case FieldOpen:
			col[i] = b.Open
		case FieldHigh:
			col[i] = b.High
		case FieldLow:
			col[i] = b.Low
		case FieldClose:
			col[i] = b.Close
		case FieldVolume:
			col[i] = b.Volume
		}
	}
	w.columns[f] = col
	return col
}

// At returns a single value at the given offset.
func (w *Window) At(f Field, offset int) (float64, error) {
	return At(w.Values(f), offset)
}

func (w *Window) Mean(f Field, size, offset int) (float64, error) {
	return Mean(w.Values(f), size, offset)
}

func (w *Window) Max(f Field, size, offset int) (float64, error) {
	return Max(w.Values(f), size, offset)
}

func (w *Window) Min(f Field, size, offset int) (float64, error) {
	return Min(w.Values(f), size, offset)
}

func (w *Window) StdDev(f Field, size, offset int) (float64, error) {
	return StdDev(w.Values(f), size, offset)
}

// TrueRanges returns the true range of every bar. The first bar has no
// previous close and uses high-low.
func (w *Window) TrueRanges() []float64 {
	if w.tr != nil {
		return w.tr
	}
	tr := make([]float64, len(w.bars))
	for i, b := range w.bars {
		hl := b.High - b.Low
		if i == 0 {
			tr[i] = hl
			continue
		}
		prev := w.bars[i-1].Close
		tr[i] = math.Max(hl, math.Max(math.Abs(b.High-prev), math.Abs(b.Low-prev)))
	}
	w.tr = tr
	return tr
}

// ATR returns the trailing mean of true range over size bars ending at offset.
func (w *Window) ATR(size, offset int) (float64, error) {
	return Mean(w.TrueRanges(), size, offset)
}

// Trailing returns the size values ending at offset.
func Trailing(values []float64, size, offset int) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size %d must be positive", size)
	}
	if offset > 0 {
		return nil, fmt.Errorf("offset %d must not be positive", offset)
	}
	end := len(values) + offset
	if end-size < 0 {
		return nil, fmt.Errorf("%w: window %d at offset %d needs %d values, have %d",
			ErrInsufficientData, size, offset, size-offset, len(values))
	}
	return values[end-size : end], nil
}

// At returns the value at offset.
func At(values []float64, offset int) (float64, error) {
	v, err := Trailing(values, 1, offset)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// Mean returns the arithmetic mean of the trailing window.
func Mean(values []float64, size, offset int) (float64, error) {
	v, err := Trailing(values, size, offset)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(size), nil
}

// Max returns the largest value of the trailing window.
func Max(values []float64, size, offset int) (float64, error) {
	v, err := Trailing(values, size, offset)
	if err != nil {
		return 0, err
	}
	m := math.Inf(-1)
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	return m, nil
}

// Min returns the smallest value of the trailing window.
func Min(values []float64, size, offset int) (float64, error) {
	v, err := Trailing(values, size, offset)
	if err != nil {
		return 0, err
	}
	m := math.Inf(1)
	for _, x := range v {
		if x < m {
			m = x
		}
	}
	return m, nil
}

// StdDev returns the population standard deviation of the trailing window.
func StdDev(values []float64, size, offset int) (float64, error) {
	v, err := Trailing(values, size, offset)
	if err != nil {
		return 0, err
	}
	if size == 1 {
		return 0, nil
	}
	out := talib.StdDev(v, size, 1.0)
	return out[len(out)-1], nil
}

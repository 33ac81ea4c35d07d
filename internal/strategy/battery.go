package strategy

import (
	"errors"
	"fmt"
	"math"

	"MarketScreener/internal/calculator"
	"MarketScreener/internal/model"
)

// ErrInvalidIndicator is returned when an indicator evaluates to NaN or Inf.
var ErrInvalidIndicator = errors.New("invalid indicator")

// ComputeIndicators evaluates the full indicator set at the most recent bar.
// Any window reaching before the first bar yields calculator.ErrInsufficientData.
func ComputeIndicators(bars []model.OHLCV, p Profile) (model.Indicators, error) {
	var ind model.Indicators
	if len(bars) < p.RequiredBars() {
		return ind, fmt.Errorf("%w: need %d bars, have %d", calculator.ErrInsufficientData, p.RequiredBars(), len(bars))
	}

	w := calculator.NewWindow(bars)
	cfg := p.Windows
	closes := w.Values(calculator.FieldClose)

	b := battery{w: w}
	ind.Price = b.at(calculator.FieldClose, 0)
	ind.MA20 = b.mean(calculator.FieldClose, cfg.MAFast, 0)
	ind.MA50 = b.mean(calculator.FieldClose, cfg.MAMid, 0)
	ind.MA150 = b.mean(calculator.FieldClose, cfg.MALong, 0)
	ind.MA200 = b.mean(calculator.FieldClose, cfg.MATrend, 0)
	ind.MA200Prev = b.mean(calculator.FieldClose, cfg.MATrend, -cfg.SlopeOffset)

	ind.ATR = b.atr(cfg.ATRPeriod, 0)
	ind.ATRPrev = b.atr(cfg.ATRPeriod, -cfg.ATRCompareOffset)

	ind.RangeHigh = b.max(calculator.FieldHigh, cfg.RangeLookback, 0)
	ind.RangeLow = b.min(calculator.FieldLow, cfg.RangeLookback, 0)
	ind.Support = b.min(calculator.FieldLow, cfg.RangeLookback, -cfg.SpringLookback)
	ind.Low5 = b.min(calculator.FieldLow, cfg.SpringLookback, 0)

	ind.Volume = b.at(calculator.FieldVolume, 0)
	ind.VolumeMA10 = b.mean(calculator.FieldVolume, cfg.VolumeFast, 0)
	ind.VolumeMA50 = b.mean(calculator.FieldVolume, cfg.VolumeSlow, 0)
	if b.err != nil {
		return ind, b.err
	}

	var err error
	switch cfg.RSIMethod {
	case RSIWilder:
		ind.RSI, err = calculator.CalculateWilderRSI(closes, cfg.RSIPeriod)
	default:
		ind.RSI, err = calculator.CalculateRSI(closes, cfg.RSIPeriod, 0)
	}
	if err != nil {
		return ind, err
	}

	ind.MACD, ind.MACDSignal, err = calculator.CalculateMACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	if err != nil {
		return ind, err
	}

	ind.OBV, ind.OBVPrev, _, err = calculator.OBVTrend(w, cfg.OBVLookback)
	if err != nil {
		return ind, err
	}

	for name, v := range ind.Map() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ind, fmt.Errorf("%w: %s = %v", ErrInvalidIndicator, name, v)
		}
	}
	return ind, nil
}

// battery keeps the first window error so the indicator list reads linearly.
type battery struct {
	w   *calculator.Window
	err error
}

func (b *battery) keep(v float64, err error) float64 {
	if err != nil && b.err == nil {
		b.err = err
	}
	return v
}

func (b *battery) at(f calculator.Field, offset int) float64 {
	return b.keep(b.w.At(f, offset))
}

func (b *battery) mean(f calculator.Field, size, offset int) float64 {
	return b.keep(b.w.Mean(f, size, offset))
}

func (b *battery) max(f calculator.Field, size, offset int) float64 {
	return b.keep(b.w.Max(f, size, offset))
}

func (b *battery) min(f calculator.Field, size, offset int) float64 {
	return b.keep(b.w.Min(f, size, offset))
}

func (b *battery) atr(size, offset int) float64 {
	return b.keep(b.w.ATR(size, offset))
}

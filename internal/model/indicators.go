package model

// Indicators holds the indicator set computed at the most recent bar of a series.
// Fields suffixed Prev are the same indicator evaluated at a past offset.
type Indicators struct {
	Price      float64 `json:"price"`
	MA20       float64 `json:"ma20"`
	MA50       float64 `json:"ma50"`
	MA150      float64 `json:"ma150"`
	MA200      float64 `json:"ma200"`
	MA200Prev  float64 `json:"ma200_prev"`
	RSI        float64 `json:"rsi14"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	ATR        float64 `json:"atr14"`
	ATRPrev    float64 `json:"atr14_prev"`
	OBV        float64 `json:"obv"`
	OBVPrev    float64 `json:"obv_prev"`
	RangeHigh  float64 `json:"range_high"`
	RangeLow   float64 `json:"range_low"`
	Support    float64 `json:"support"` // range low ending before the spring window
	Low5       float64 `json:"low5"`
	Volume     float64 `json:"volume"`
	VolumeMA10 float64 `json:"volume_ma10"`
	VolumeMA50 float64 `json:"volume_ma50"`
}

// Map returns the indicator set keyed by its published names.
func (i Indicators) Map() map[string]float64 {
	return map[string]float64{
		"price":       i.Price,
		"ma20":        i.MA20,
		"ma50":        i.MA50,
		"ma150":       i.MA150,
		"ma200":       i.MA200,
		"ma200_prev":  i.MA200Prev,
		"rsi14":       i.RSI,
		"macd":        i.MACD,
		"macd_signal": i.MACDSignal,
		"atr14":       i.ATR,
		"atr14_prev":  i.ATRPrev,
		"obv":         i.OBV,
		"obv_prev":    i.OBVPrev,
		"range_high":  i.RangeHigh,
		"range_low":   i.RangeLow,
		"support":     i.Support,
		"low5":        i.Low5,
		"volume":      i.Volume,
		"volume_ma10": i.VolumeMA10,
		"volume_ma50": i.VolumeMA50,
	}
}

// RangeSpan is the distance between the rolling high and low.
func (i Indicators) RangeSpan() float64 {
	return i.RangeHigh - i.RangeLow
}

package calculator

// CalculateSMA computes the simple moving average of prices over period,
// for the window ending at offset.
func CalculateSMA(prices []float64, period, offset int) (float64, error) {
	return Mean(prices, period, offset)
}

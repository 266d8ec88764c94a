package features

import "github.com/premovescan/premovescan/internal/domain"

// VWAP computes the rolling volume-weighted average price over the last
// windowHours hourly candles.
func VWAP(candles []domain.Candle, windowHours int) (float64, bool) {
	if len(candles) == 0 {
		return 0, false
	}
	start := 0
	if len(candles) > windowHours {
		start = len(candles) - windowHours
	}
	window := candles[start:]

	var pvSum, vSum float64
	for _, c := range window {
		typicalPrice := (c.High + c.Low + c.Close) / 3
		pvSum += typicalPrice * c.Volume
		vSum += c.Volume
	}
	if vSum == 0 {
		return 0, false
	}
	return pvSum / vSum, true
}

// SwingLow returns the minimum low over the last k hourly candles.
func SwingLow(candles []domain.Candle, k int) (float64, bool) {
	if len(candles) == 0 {
		return 0, false
	}
	start := 0
	if len(candles) > k {
		start = len(candles) - k
	}
	window := candles[start:]

	low := window[0].Low
	for _, c := range window[1:] {
		if c.Low < low {
			low = c.Low
		}
	}
	return low, true
}

// VolumeSum sums candle volumes over the last window hourly candles.
func VolumeSum(candles []domain.Candle, window int) float64 {
	if len(candles) == 0 {
		return 0
	}
	start := 0
	if len(candles) > window {
		start = len(candles) - window
	}
	var sum float64
	for _, c := range candles[start:] {
		sum += c.Volume
	}
	return sum
}

// Package features implements the pure, deterministic feature extractors:
// ATR, BBW percentile, VWAP, swing-low, book-cluster, and volume-sum.
// Every extractor reports a Quality reflecting whether its lookback was
// fully satisfied by the available history.
package features

import (
	"math"

	"github.com/premovescan/premovescan/internal/domain"
)

// ATRResult is Wilder's Average True Range over n candles.
type ATRResult struct {
	Value   float64
	Valid   bool
	Quality domain.Quality
}

// ATR computes Wilder-smoothed Average True Range over the last n periods.
// Requires at least n+1 candles, else returns Valid=false.
func ATR(candles []domain.Candle, n int) ATRResult {
	if len(candles) < n+1 {
		return ATRResult{Valid: false, Quality: domain.QualityLow}
	}

	trueRanges := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		c := candles[i]
		prevClose := candles[i-1].Close
		tr := math.Max(c.High-c.Low, math.Max(math.Abs(c.High-prevClose), math.Abs(c.Low-prevClose)))
		trueRanges = append(trueRanges, tr)
	}

	// Seed with a simple average of the first n true ranges, then apply
	// Wilder's smoothing (EMA with alpha = 1/n) for the rest.
	var atr float64
	for i := 0; i < n; i++ {
		atr += trueRanges[i]
	}
	atr /= float64(n)

	alpha := 1.0 / float64(n)
	for i := n; i < len(trueRanges); i++ {
		atr = atr*(1-alpha) + trueRanges[i]*alpha
	}

	q := domain.QualityHigh
	if len(candles) < n*2 {
		q = domain.QualityMed
	}
	return ATRResult{Value: atr, Valid: true, Quality: q}
}

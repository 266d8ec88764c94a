package features

import (
	"math"
	"sort"

	"github.com/premovescan/premovescan/internal/domain"
)

// BBWResult is the current Bollinger Band Width and its percentile rank
// across the full available history (lower percentile = more compressed).
type BBWResult struct {
	Current    float64
	Percentile float64 // 0..1, rank of Current within the historical series
	Valid      bool
	Quality    domain.Quality
}

// BBWSeries computes the rolling 20-period Bollinger Band Width
// ((upper-lower)/middle over a 20-period SMA and +/-2 sigma) for every
// window-end in candles, in order.
func BBWSeries(candles []domain.Candle, period int) []float64 {
	if len(candles) < period {
		return nil
	}
	out := make([]float64, 0, len(candles)-period+1)
	for end := period; end <= len(candles); end++ {
		window := candles[end-period : end]
		out = append(out, bbwAt(window))
	}
	return out
}

func bbwAt(window []domain.Candle) float64 {
	n := float64(len(window))
	var sum float64
	for _, c := range window {
		sum += c.Close
	}
	mean := sum / n

	var variance float64
	for _, c := range window {
		d := c.Close - mean
		variance += d * d
	}
	variance /= n
	stddev := math.Sqrt(variance)

	upper := mean + 2*stddev
	lower := mean - 2*stddev
	if mean == 0 {
		return 0
	}
	return (upper - lower) / mean
}

// BBW computes the current BBW(20) and its percentile rank across the full
// history present in candles.
func BBW(candles []domain.Candle, period int) BBWResult {
	series := BBWSeries(candles, period)
	if len(series) == 0 {
		return BBWResult{Valid: false, Quality: domain.QualityLow}
	}
	current := series[len(series)-1]

	sorted := append([]float64(nil), series...)
	sort.Float64s(sorted)
	rank := 0
	for _, v := range sorted {
		if v <= current {
			rank++
		}
	}
	percentile := float64(rank) / float64(len(sorted))

	q := domain.QualityHigh
	if len(series) < 50 {
		q = domain.QualityMed
	}
	if len(series) < period {
		q = domain.QualityLow
	}
	return BBWResult{Current: current, Percentile: percentile, Valid: true, Quality: q}
}

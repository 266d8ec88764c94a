package signals

import (
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

var crossExchangeAnchors = []Point{{1.5, 35}, {2, 55}, {3, 75}, {4, 88}}

// CrossExchangeDivergence: weight 0.12. Rewards a single exchange carrying
// disproportionate 24h volume relative to the rest, a signature of
// accumulation concentrated on one venue.
func CrossExchangeDivergence(b features.Bundle) domain.Signal {
	if len(b.ExchangeVol24h) < 2 {
		return domain.Signal{Name: "cross_exchange", Quality: domain.QualityLow}
	}

	var max, sumRest float64
	count := 0
	for _, v := range b.ExchangeVol24h {
		if v > max {
			max = v
		}
		count++
	}
	for _, v := range b.ExchangeVol24h {
		if v != max {
			sumRest += v
		}
	}
	if count < 2 {
		sumRest = max
	}
	avgRest := sumRest / float64(count-1)
	if avgRest <= 0 {
		return domain.Signal{Name: "cross_exchange", Quality: domain.QualityLow}
	}

	ratio := max / avgRest
	score := Eval(ratio, crossExchangeAnchors)

	return domain.Signal{Name: "cross_exchange", Score: clamp(score), Raw: ratio, Quality: b.Quality}
}

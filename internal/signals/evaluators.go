package signals

import (
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

// Weights, indexed identically to the signal array returned by Evaluate,
// in composite-scoring order. They sum to 1.00.
var Weights = [9]float64{
	0.18, // oi_surge
	0.17, // funding
	0.15, // liq_leverage
	0.12, // cross_exchange
	0.11, // depth
	0.08, // decouple
	0.08, // volcompression
	0.06, // ls_ratio
	0.05, // futures_volume
}

// Evaluate runs all nine signal evaluators over a bundle, in the fixed
// order the weight vector and the composite scorer expect.
func Evaluate(b features.Bundle) [9]domain.Signal {
	return [9]domain.Signal{
		OISurge(b),
		FundingRate(b),
		LiquidationLeverage(b),
		CrossExchangeDivergence(b),
		DepthImbalance(b),
		PriceOIDecouple(b),
		VolatilityCompression(b),
		LongShortRatio(b),
		FuturesVolumeRatio(b),
	}
}

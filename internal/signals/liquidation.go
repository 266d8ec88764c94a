package signals

import (
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

var liqLeverageAnchors = []Point{{2, 35}, {3, 55}, {5, 75}, {8, 90}}

// LiquidationLeverage: weight 0.15. Estimates short notional from open
// interest and the long/short ratio, then compares it against resting ask
// liquidity within +15% of price.
//
// The distribution of short entry prices isn't directly observable. This
// evaluator approximates it by assuming short notional is spread
// uniformly across the last 30d trading range, so the fraction
// liquidatable within +15% of the current price is proportional to how
// much of that range the +15% band covers — a documented proxy, not a
// liquidation-price model.
func LiquidationLeverage(b features.Bundle) domain.Signal {
	shortFraction := 0.5
	if b.LSRatioMean > 0 {
		shortFraction = 1 / (1 + b.LSRatioMean)
	}
	shortNotional := b.OINow * shortFraction

	rangeWidth := b.PriceHigh30d - b.PriceLow30d
	bandWidth := 0.15 * b.PriceNow
	fractionInBand := 1.0
	if rangeWidth > 0 {
		fractionInBand = bandWidth / rangeWidth
		if fractionInBand > 1 {
			fractionInBand = 1
		}
	}
	liqVolume := shortNotional * fractionInBand

	askResistance := b.AskCluster15pc.TotalUSD
	if askResistance <= 0 {
		return domain.Signal{Name: "liq_leverage", Quality: domain.QualityLow}
	}
	ratio := liqVolume / askResistance
	score := Eval(ratio, liqLeverageAnchors)

	q := b.Quality.Worse(b.AskCluster15pc.Quality)
	return domain.Signal{Name: "liq_leverage", Score: clamp(score), Raw: ratio, Quality: q}
}

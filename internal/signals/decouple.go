package signals

import (
	"math"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

var decoupleAnchors = []Point{{0.35, 50}, {0.75, 78}, {1.0, 88}}

const decoupleOIGrowthCap = 0.40

// PriceOIDecouple: weight 0.08. Raw measures open interest building while
// price stays flat, normalized to [0,1] against a 40% 72h OI-growth cap. A
// concurrent price move above 2% dampens the score sharply (12x) since the
// whole point of the signal is accumulation without a visible price tell.
func PriceOIDecouple(b features.Bundle) domain.Signal {
	if b.OI72hAgo == 0 || b.Price72hAgo == 0 {
		return domain.Signal{Name: "decouple", Quality: domain.QualityLow}
	}
	oiGrowth := (b.OINow - b.OI72hAgo) / b.OI72hAgo
	raw := math.Max(0, math.Min(1, oiGrowth/decoupleOIGrowthCap))
	score := Eval(raw, decoupleAnchors)

	priceMove := math.Abs(b.PriceNow/b.Price72hAgo - 1)
	dampener := math.Max(0, 1-12*math.Max(0, priceMove-0.02))
	score *= dampener

	return domain.Signal{Name: "decouple", Score: clamp(score), Raw: raw, Quality: b.Quality}
}

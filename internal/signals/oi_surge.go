package signals

import (
	"math"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

var oiSurgeAnchors = []Point{{0.10, 45}, {0.20, 68}, {0.30, 80}, {0.40, 90}}

// OISurge: weight 0.18. Raw is the 72h open-interest growth rate; a large
// concurrent price move dampens the score since surging OI alongside price
// is ordinary momentum, not quiet accumulation.
func OISurge(b features.Bundle) domain.Signal {
	if b.OI72hAgo == 0 {
		return domain.Signal{Name: "oi_surge", Quality: domain.QualityLow}
	}
	raw := (b.OINow - b.OI72hAgo) / b.OI72hAgo
	score := Eval(raw, oiSurgeAnchors)

	priceMove := math.Abs(0)
	if b.Price72hAgo > 0 {
		priceMove = math.Abs(b.PriceNow/b.Price72hAgo - 1)
	}
	dampener := math.Max(0, 1-10*math.Max(0, priceMove-0.02))
	score *= dampener

	return domain.Signal{Name: "oi_surge", Score: clamp(score), Raw: raw, Quality: b.Quality}
}

package signals

import (
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

var fundingMagnitudeAnchors = []Point{{0.00001, 45}, {0.00002, 65}, {0.00003, 78}, {0.00005, 90}}
var fundingPersistenceAnchors = []Point{{0.3, 20}, {0.5, 45}, {0.7, 70}, {0.85, 90}}

// FundingRate: weight 0.17. Magnitude rewards deeply negative average
// funding (shorts paying longs); a positive average rate zeroes the
// magnitude sub-score outright. Persistence rewards funding staying
// negative across the trailing window.
func FundingRate(b features.Bundle) domain.Signal {
	var magnitude float64
	if b.FundingRateMean24h < 0 {
		magnitude = Eval(-b.FundingRateMean24h, fundingMagnitudeAnchors)
	}
	persistence := Eval(b.FundingPersistence72h, fundingPersistenceAnchors)

	combined := 0.55*magnitude + 0.45*persistence
	return domain.Signal{Name: "funding", Score: clamp(combined), Raw: b.FundingRateMean24h, Quality: b.Quality}
}

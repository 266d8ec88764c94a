package signals

import (
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

var volCompressionAnchors = []Point{{0.65, 42}, {0.75, 58}, {0.85, 75}, {0.95, 95}}

// VolatilityCompression: weight 0.08. Raw is one minus the current BBW
// percentile rank, so a band squeezed tighter than almost all of its
// history scores highest.
func VolatilityCompression(b features.Bundle) domain.Signal {
	if !b.BBW.Valid {
		return domain.Signal{Name: "volcompression", Quality: domain.QualityLow}
	}
	raw := 1 - b.BBW.Percentile
	score := Eval(raw, volCompressionAnchors)

	return domain.Signal{Name: "volcompression", Score: clamp(score), Raw: raw, Quality: b.BBW.Quality}
}

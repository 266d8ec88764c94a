package signals

import (
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

var futuresVolumeAnchors = []Point{{1.5, 35}, {2.0, 55}, {3.0, 78}, {4.0, 90}}

// FuturesVolumeRatio: weight 0.05. Raw is the 24h volume relative to the
// trailing 72h mean; a volume pickup without a corresponding price move
// rounds out the composite.
func FuturesVolumeRatio(b features.Bundle) domain.Signal {
	if b.Vol72hMean <= 0 {
		return domain.Signal{Name: "futures_volume", Quality: domain.QualityLow}
	}
	ratio := b.Vol24h / b.Vol72hMean
	score := Eval(ratio, futuresVolumeAnchors)

	return domain.Signal{Name: "futures_volume", Score: clamp(score), Raw: ratio, Quality: b.Quality}
}

package signals

import (
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

// lsRatioAnchors is read as "ratio falls to X, score rises to Y" — unlike
// the other curves, lower raw scores higher, since a long/short ratio well
// below 1 means the crowd is short while OI quietly builds.
var lsRatioAnchors = []Point{{0.90, 30}, {0.80, 55}, {0.70, 75}, {0.60, 90}}

const lsRatioDecayStart = 1.0
const lsRatioDecayEnd = 1.2
const lsRatioDecayStartScore = 8.0

// LongShortRatio: weight 0.06. Below 1.0 the score rises as the ratio falls
// toward 0.60 (tracked against lsRatioAnchors); at or above 1.0 — crowd
// leaning long — the score decays linearly from 8 at 1.0 to 0 at 1.2 and
// beyond.
func LongShortRatio(b features.Bundle) domain.Signal {
	if b.LSRatioMean <= 0 {
		return domain.Signal{Name: "ls_ratio", Quality: domain.QualityLow}
	}
	r := b.LSRatioMean

	var score float64
	switch {
	case r >= lsRatioDecayEnd:
		score = 0
	case r >= lsRatioDecayStart:
		frac := (r - lsRatioDecayStart) / (lsRatioDecayEnd - lsRatioDecayStart)
		score = lsRatioDecayStartScore * (1 - frac)
	case r <= lsRatioAnchors[len(lsRatioAnchors)-1].X:
		score = lsRatioAnchors[len(lsRatioAnchors)-1].Y
	case r >= lsRatioAnchors[0].X:
		// interpolate between (1.0, lsRatioDecayStartScore) and
		// (lsRatioAnchors[0].X, lsRatioAnchors[0].Y); frac=0 at r=1.0,
		// frac=1 at r=lsRatioAnchors[0].X.
		frac := (lsRatioDecayStart - r) / (lsRatioDecayStart - lsRatioAnchors[0].X)
		score = lsRatioDecayStartScore + frac*(lsRatioAnchors[0].Y-lsRatioDecayStartScore)
	default:
		for i := 0; i < len(lsRatioAnchors)-1; i++ {
			hi, lo := lsRatioAnchors[i], lsRatioAnchors[i+1]
			if r >= lo.X && r <= hi.X {
				frac := (hi.X - r) / (hi.X - lo.X)
				score = hi.Y + frac*(lo.Y-hi.Y)
				break
			}
		}
	}

	return domain.Signal{Name: "ls_ratio", Score: clamp(score), Raw: r, Quality: b.Quality}
}

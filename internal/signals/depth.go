package signals

import (
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

var depthAnchors = []Point{{1.3, 30}, {1.5, 50}, {2.0, 75}, {2.5, 88}, {3.0, 95}}

// DepthImbalance: weight 0.11. Compares resting bid support against ask
// resistance within +/-10% of price; a bid-heavy book suggests the order
// flow is quietly absorbing supply.
func DepthImbalance(b features.Bundle) domain.Signal {
	askUSD := b.AskCluster10pc.TotalUSD
	if askUSD <= 0 {
		return domain.Signal{Name: "depth", Quality: domain.QualityLow}
	}
	ratio := b.BidCluster10pc.TotalUSD / askUSD
	score := Eval(ratio, depthAnchors)

	q := b.BidCluster10pc.Quality.Worse(b.AskCluster10pc.Quality)
	return domain.Signal{Name: "depth", Score: clamp(score), Raw: ratio, Quality: q}
}

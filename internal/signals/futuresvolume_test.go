package signals

import (
	"testing"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

func TestFuturesVolumeRatioZeroBaselineIsLowQuality(t *testing.T) {
	sig := FuturesVolumeRatio(features.Bundle{Vol24h: 1_000_000})
	if sig.Quality != domain.QualityLow {
		t.Fatalf("expected LOW quality with no 72h volume baseline, got %v", sig.Quality)
	}
	if sig.Score != 0 {
		t.Fatalf("expected zero score, got %v", sig.Score)
	}
}

func TestFuturesVolumeRatioPickupScoresHigherThanFlat(t *testing.T) {
	flat := FuturesVolumeRatio(features.Bundle{Vol24h: 1_000_000, Vol72hMean: 1_000_000, Quality: domain.QualityHigh})
	pickup := FuturesVolumeRatio(features.Bundle{Vol24h: 4_000_000, Vol72hMean: 1_000_000, Quality: domain.QualityHigh})
	if pickup.Score <= flat.Score {
		t.Fatalf("expected a volume pickup to score higher than flat volume: flat=%v pickup=%v", flat.Score, pickup.Score)
	}
}

func TestFuturesVolumeRatioScoreWithinBounds(t *testing.T) {
	sig := FuturesVolumeRatio(features.Bundle{Vol24h: 10_000_000, Vol72hMean: 500_000, Quality: domain.QualityHigh})
	if sig.Score < 0 || sig.Score > 100 {
		t.Fatalf("score %v out of [0,100]", sig.Score)
	}
}

package signals

import (
	"testing"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

func TestVolatilityCompressionInvalidBBWIsLowQuality(t *testing.T) {
	sig := VolatilityCompression(features.Bundle{})
	if sig.Quality != domain.QualityLow {
		t.Fatalf("expected LOW quality with no BBW history, got %v", sig.Quality)
	}
	if sig.Score != 0 {
		t.Fatalf("expected zero score, got %v", sig.Score)
	}
}

func TestVolatilityCompressionTighterBandScoresHigher(t *testing.T) {
	wide := VolatilityCompression(features.Bundle{
		BBW: features.BBWResult{Valid: true, Percentile: 0.80, Quality: domain.QualityHigh},
	})
	tight := VolatilityCompression(features.Bundle{
		BBW: features.BBWResult{Valid: true, Percentile: 0.05, Quality: domain.QualityHigh},
	})
	if tight.Score <= wide.Score {
		t.Fatalf("expected a band tighter than its history to score higher: wide=%v tight=%v", wide.Score, tight.Score)
	}
}

func TestVolatilityCompressionScoreWithinBounds(t *testing.T) {
	sig := VolatilityCompression(features.Bundle{
		BBW: features.BBWResult{Valid: true, Percentile: 0.02, Quality: domain.QualityHigh},
	})
	if sig.Score < 0 || sig.Score > 100 {
		t.Fatalf("score %v out of [0,100]", sig.Score)
	}
}

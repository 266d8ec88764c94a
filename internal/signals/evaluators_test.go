package signals

import (
	"testing"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

func TestWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range Weights {
		sum += w
	}
	const eps = 1e-9
	if sum < 1.00-eps || sum > 1.00+eps {
		t.Fatalf("weights sum to %v, want 1.00", sum)
	}
}

func TestEvaluateAllZeroBundleYieldsZeroScores(t *testing.T) {
	sig := Evaluate(features.Bundle{})
	for i, s := range sig {
		if s.Score != 0 {
			t.Fatalf("signal %d (%s) expected zero score for empty bundle, got %v", i, s.Name, s.Score)
		}
	}
}

func TestEvaluateOrderMatchesWeights(t *testing.T) {
	b := features.Bundle{
		Quality:            domain.QualityHigh,
		OINow:              140,
		OI72hAgo:           100,
		PriceNow:           100,
		Price72hAgo:        100,
		FundingRateMean24h: -0.00002,
	}
	sig := Evaluate(b)
	names := []string{"oi_surge", "funding", "liq_leverage", "cross_exchange", "depth", "decouple", "volcompression", "ls_ratio", "futures_volume"}
	for i, n := range names {
		if sig[i].Name != n {
			t.Fatalf("index %d: expected signal %q, got %q", i, n, sig[i].Name)
		}
	}
}

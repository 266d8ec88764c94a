package signals

import (
	"testing"

	"github.com/premovescan/premovescan/internal/features"
)

func TestLongShortRatioLowRatioScoresHigh(t *testing.T) {
	sig := LongShortRatio(features.Bundle{LSRatioMean: 0.60})
	if sig.Score < 89 {
		t.Fatalf("expected near-saturated score at r=0.60, got %v", sig.Score)
	}
}

func TestLongShortRatioDecaysAboveOne(t *testing.T) {
	at1 := LongShortRatio(features.Bundle{LSRatioMean: 1.0})
	at11 := LongShortRatio(features.Bundle{LSRatioMean: 1.1})
	at12 := LongShortRatio(features.Bundle{LSRatioMean: 1.2})

	if !(at1.Score > at11.Score && at11.Score > at12.Score) {
		t.Fatalf("expected strictly decaying scores from 1.0->1.2, got %v, %v, %v", at1.Score, at11.Score, at12.Score)
	}
	if at12.Score != 0 {
		t.Fatalf("expected zero score at r=1.2, got %v", at12.Score)
	}
}

func TestLongShortRatioZeroIsLowQuality(t *testing.T) {
	sig := LongShortRatio(features.Bundle{})
	if sig.Score != 0 {
		t.Fatalf("expected zero score with no LS data, got %v", sig.Score)
	}
}

func TestLongShortRatioMonotonicAcrossTheOneBoundary(t *testing.T) {
	ratios := []float64{1.20, 1.10, 1.00, 0.95, 0.90, 0.85, 0.80, 0.70, 0.60}
	prev := -1.0
	for _, r := range ratios {
		sig := LongShortRatio(features.Bundle{LSRatioMean: r})
		if sig.Score < prev {
			t.Fatalf("score regressed at r=%v: got %v after previous %v (ratios walked high->low, scores must rise)", r, sig.Score, prev)
		}
		prev = sig.Score
	}
}

func TestLongShortRatioAnchorsAtOneAndNinety(t *testing.T) {
	at1 := LongShortRatio(features.Bundle{LSRatioMean: 1.0})
	if at1.Score != 8 {
		t.Fatalf("expected score 8 at r=1.0 per the documented curve, got %v", at1.Score)
	}
	at90 := LongShortRatio(features.Bundle{LSRatioMean: 0.90})
	if at90.Score != 30 {
		t.Fatalf("expected score 30 at r=0.90 per the anchor table, got %v", at90.Score)
	}
}

package features

import (
	"testing"

	"github.com/premovescan/premovescan/internal/domain"
)

func flatCandles(n int, price, spread float64) []domain.Candle {
	out := make([]domain.Candle, n)
	for i := range out {
		out[i] = domain.Candle{T: int64(i), Open: price, High: price + spread, Low: price - spread, Close: price}
	}
	return out
}

func TestATRInsufficientHistoryIsInvalid(t *testing.T) {
	r := ATR(flatCandles(5, 100, 1), 14)
	if r.Valid {
		t.Fatalf("expected Valid=false with fewer than n+1 candles, got %+v", r)
	}
	if r.Quality != domain.QualityLow {
		t.Fatalf("expected LOW quality, got %v", r.Quality)
	}
}

func TestATRConstantRangeConverges(t *testing.T) {
	r := ATR(flatCandles(40, 100, 2), 14)
	if !r.Valid {
		t.Fatal("expected Valid=true with ample history")
	}
	// every true range equals the constant high-low spread (2*2=4), so the
	// Wilder average should converge to that value.
	if diff := r.Value - 4; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected ATR to converge to 4, got %v", r.Value)
	}
}

func TestATRQualityDowngradedWithThinHistory(t *testing.T) {
	r := ATR(flatCandles(20, 100, 1), 14) // >= n+1 but < n*2
	if !r.Valid {
		t.Fatal("expected Valid=true")
	}
	if r.Quality != domain.QualityMed {
		t.Fatalf("expected MED quality with history under 2n, got %v", r.Quality)
	}
}

func TestATRHighQualityWithDeepHistory(t *testing.T) {
	r := ATR(flatCandles(40, 100, 1), 14)
	if r.Quality != domain.QualityHigh {
		t.Fatalf("expected HIGH quality with history >= 2n, got %v", r.Quality)
	}
}

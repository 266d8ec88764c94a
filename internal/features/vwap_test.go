package features

import (
	"testing"

	"github.com/premovescan/premovescan/internal/domain"
)

func ohlcvCandles(rows [][4]float64) []domain.Candle {
	out := make([]domain.Candle, len(rows))
	for i, r := range rows {
		out[i] = domain.Candle{T: int64(i), High: r[0], Low: r[1], Close: r[2], Volume: r[3]}
	}
	return out
}

func TestVWAPEmptyCandlesInvalid(t *testing.T) {
	if _, ok := VWAP(nil, 24); ok {
		t.Fatal("expected ok=false for an empty candle slice")
	}
}

func TestVWAPZeroVolumeInvalid(t *testing.T) {
	candles := ohlcvCandles([][4]float64{{101, 99, 100, 0}, {102, 98, 100, 0}})
	if _, ok := VWAP(candles, 24); ok {
		t.Fatal("expected ok=false when total volume is zero")
	}
}

func TestVWAPWeightsByVolume(t *testing.T) {
	// two candles, same typical price spread but one has 9x the volume of
	// the other; VWAP should sit near the heavier candle's typical price.
	candles := ohlcvCandles([][4]float64{
		{102, 98, 100, 1},  // typical price 100, low volume
		{122, 118, 120, 9}, // typical price 120, high volume
	})
	vwap, ok := VWAP(candles, 24)
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := (100*1 + 120*9) / 10.0
	if diff := vwap - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("vwap = %v, want %v", vwap, want)
	}
}

func TestVWAPOnlyUsesWindow(t *testing.T) {
	candles := ohlcvCandles([][4]float64{
		{1001, 999, 1000, 100}, // outside the window, should be excluded
		{102, 98, 100, 1},
		{122, 118, 120, 1},
	})
	vwap, ok := VWAP(candles, 2)
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := (100 + 120) / 2.0
	if diff := vwap - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("vwap = %v, want %v (outlier candle outside window should be excluded)", vwap, want)
	}
}

func TestSwingLowFindsMinimumWithinWindow(t *testing.T) {
	candles := ohlcvCandles([][4]float64{
		{105, 80, 100, 1}, // lowest low, but outside the 2-candle window
		{105, 95, 100, 1},
		{105, 90, 100, 1},
	})
	low, ok := SwingLow(candles, 2)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if low != 90 {
		t.Fatalf("swing low = %v, want 90 (min low within the window)", low)
	}
}

func TestVolumeSumOnlyUsesWindow(t *testing.T) {
	candles := ohlcvCandles([][4]float64{
		{0, 0, 0, 1000}, // outside the window
		{0, 0, 0, 5},
		{0, 0, 0, 7},
	})
	sum := VolumeSum(candles, 2)
	if sum != 12 {
		t.Fatalf("volume sum = %v, want 12", sum)
	}
}

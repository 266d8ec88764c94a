package features

import (
	"testing"

	"github.com/premovescan/premovescan/internal/domain"
)

func TestBookClusterZeroPriceIsLowQuality(t *testing.T) {
	r := BookCluster(map[string]domain.BookPerExchange{}, SideBid, 0, 0.10)
	if r.Quality != domain.QualityLow {
		t.Fatalf("expected LOW quality with zero price, got %v", r.Quality)
	}
}

func TestBookClusterNoExchangeLevelsIsLowQuality(t *testing.T) {
	r := BookCluster(map[string]domain.BookPerExchange{"binance": {}}, SideBid, 100, 0.10)
	if r.Quality != domain.QualityLow {
		t.Fatalf("expected LOW quality with no levels on any exchange, got %v", r.Quality)
	}
}

func TestBookClusterSingleExchangeIsMedQuality(t *testing.T) {
	book := map[string]domain.BookPerExchange{
		"binance": {Bids: []domain.BookLevel{{Price: 99, USD: 10000}}},
	}
	r := BookCluster(book, SideBid, 100, 0.10)
	if r.Quality != domain.QualityMed {
		t.Fatalf("expected MED quality with a single contributing exchange, got %v", r.Quality)
	}
}

func TestBookClusterAggregatesAcrossExchanges(t *testing.T) {
	book := map[string]domain.BookPerExchange{
		"binance": {Bids: []domain.BookLevel{{Price: 99, USD: 10000}}},
		"bybit":   {Bids: []domain.BookLevel{{Price: 99, USD: 5000}}},
	}
	r := BookCluster(book, SideBid, 100, 0.10)
	if r.Quality != domain.QualityHigh {
		t.Fatalf("expected HIGH quality with multiple contributing exchanges, got %v", r.Quality)
	}
	if r.TotalUSD != 15000 {
		t.Fatalf("expected total USD to sum across exchanges, got %v", r.TotalUSD)
	}
}

func TestBookClusterExcludesLevelsOutsideWindow(t *testing.T) {
	book := map[string]domain.BookPerExchange{
		"binance": {Bids: []domain.BookLevel{
			{Price: 99, USD: 10000},  // inside the 10% window
			{Price: 50, USD: 999999}, // far outside the window, excluded
		}},
	}
	r := BookCluster(book, SideBid, 100, 0.10)
	if r.TotalUSD != 10000 {
		t.Fatalf("expected only the in-window level to count, got total=%v", r.TotalUSD)
	}
}

func TestBookClusterAsksOnlyAboveReferencePrice(t *testing.T) {
	book := map[string]domain.BookPerExchange{
		"binance": {Asks: []domain.BookLevel{
			{Price: 101, USD: 8000}, // inside the window, above price
			{Price: 99, USD: 5000},  // below reference price, not an ask-side level
		}},
	}
	r := BookCluster(book, SideAsk, 100, 0.10)
	if r.TotalUSD != 8000 {
		t.Fatalf("expected only the above-price ask level to count, got total=%v", r.TotalUSD)
	}
}

func TestMedianRecentClusterUSDOddAndEven(t *testing.T) {
	if m := MedianRecentClusterUSD([]float64{10, 30, 20}); m != 20 {
		t.Fatalf("odd-length median = %v, want 20", m)
	}
	if m := MedianRecentClusterUSD([]float64{10, 20, 30, 40}); m != 25 {
		t.Fatalf("even-length median = %v, want 25", m)
	}
}

func TestMedianRecentClusterUSDEmpty(t *testing.T) {
	if m := MedianRecentClusterUSD(nil); m != 0 {
		t.Fatalf("expected 0 for an empty sample set, got %v", m)
	}
}

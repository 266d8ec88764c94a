package market

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/metrics"
)

func testExchange(t *testing.T, src Source) *Exchange {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	return NewExchange(src, NewTokenBucket(1000, 1000), m)
}

func fakeCandles(n int) []domain.Candle {
	out := make([]domain.Candle, n)
	for i := range out {
		out[i] = domain.Candle{T: int64(i), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1}
	}
	return out
}

type erroringListSource struct{ *FakeSource }

func (e erroringListSource) ListFuturesSymbols(ctx context.Context) ([]string, error) {
	return nil, errors.New("boom")
}

func TestRegistryUniverseUnionsSymbolsAcrossExchanges(t *testing.T) {
	a := NewFakeSource("binance")
	a.Symbols = []string{"BTC-PERP", "ETH-PERP"}
	b := NewFakeSource("bybit")
	b.Symbols = []string{"ETH-PERP", "SOL-PERP"}

	reg := NewRegistry(testExchange(t, a), testExchange(t, b))
	got, err := reg.Universe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(got)
	want := []string{"BTC-PERP", "ETH-PERP", "SOL-PERP"}
	if len(got) != len(want) {
		t.Fatalf("universe = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("universe = %v, want %v", got, want)
		}
	}
}

func TestRegistryUniverseToleratesExchangeFailure(t *testing.T) {
	ok := NewFakeSource("binance")
	ok.Symbols = []string{"BTC-PERP"}
	bad := erroringListSource{NewFakeSource("flaky")}

	reg := NewRegistry(testExchange(t, ok), testExchange(t, bad))
	got, err := reg.Universe(context.Background())
	if err != nil {
		t.Fatalf("expected the failing exchange to degrade coverage, not abort: %v", err)
	}
	if len(got) != 1 || got[0] != "BTC-PERP" {
		t.Fatalf("universe = %v, want [BTC-PERP]", got)
	}
}

func TestRegistryFetchSymbolPicksDeepestCandleHistory(t *testing.T) {
	shallow := NewFakeSource("binance")
	shallow.Candles["BTC-PERP"] = fakeCandles(10)
	deep := NewFakeSource("bybit")
	deep.Candles["BTC-PERP"] = fakeCandles(50)

	reg := NewRegistry(testExchange(t, shallow), testExchange(t, deep))
	candles, _ := reg.FetchSymbol(context.Background(), "BTC-PERP", 0)
	if len(candles.Candles) != 50 {
		t.Fatalf("expected the deeper exchange's candle history to win, got %d candles", len(candles.Candles))
	}
}

func TestRegistryFetchSymbolAggregatesPerExchange(t *testing.T) {
	a := NewFakeSource("binance")
	a.Candles["BTC-PERP"] = fakeCandles(30)
	a.OI["BTC-PERP"] = 1_000_000
	a.Funding["BTC-PERP"] = 0.0001
	a.LS["BTC-PERP"] = 1.2
	a.Tickers["BTC-PERP"] = domain.Ticker{Price: 100}
	a.Books["BTC-PERP"] = domain.BookPerExchange{Bids: []domain.BookLevel{{Price: 99, USD: 500}}}

	b := NewFakeSource("bybit")
	b.Candles["BTC-PERP"] = fakeCandles(30)
	b.OI["BTC-PERP"] = 500_000
	b.Funding["BTC-PERP"] = -0.0002
	b.LS["BTC-PERP"] = 0.9
	b.Tickers["BTC-PERP"] = domain.Ticker{Price: 101}
	b.Books["BTC-PERP"] = domain.BookPerExchange{Bids: []domain.BookLevel{{Price: 98, USD: 300}}}

	reg := NewRegistry(testExchange(t, a), testExchange(t, b))
	_, agg := reg.FetchSymbol(context.Background(), "BTC-PERP", 0)

	if agg.OIByExchange["binance"] != 1_000_000 || agg.OIByExchange["bybit"] != 500_000 {
		t.Fatalf("expected per-exchange OI to be keyed by exchange name, got %+v", agg.OIByExchange)
	}
	if len(agg.TickerByExch) != 2 {
		t.Fatalf("expected both exchanges' tickers present, got %+v", agg.TickerByExch)
	}
	if len(agg.MissingExchanges) != 0 {
		t.Fatalf("expected no missing exchanges when both have full data, got %v", agg.MissingExchanges)
	}
	if agg.Quality != domain.QualityHigh {
		t.Fatalf("expected HIGH quality with full per-exchange coverage, got %v", agg.Quality)
	}
}

func TestRegistryFetchSymbolMarksMissingAndDegradesQuality(t *testing.T) {
	present := NewFakeSource("binance")
	present.OI["BTC-PERP"] = 1_000_000
	present.Tickers["BTC-PERP"] = domain.Ticker{Price: 100}

	absent := NewFakeSource("bybit") // no data registered for this symbol at all

	reg := NewRegistry(testExchange(t, present), testExchange(t, absent))
	_, agg := reg.FetchSymbol(context.Background(), "BTC-PERP", 0)

	if len(agg.MissingExchanges) == 0 {
		t.Fatal("expected the exchange with no registered data to be recorded as missing")
	}
	if agg.Quality != domain.QualityMed {
		t.Fatalf("expected MED quality when one exchange is missing data, got %v", agg.Quality)
	}
}

func TestRegistryHealthAggregatesAllExchanges(t *testing.T) {
	a := NewFakeSource("binance")
	b := NewFakeSource("bybit")
	reg := NewRegistry(testExchange(t, a), testExchange(t, b))

	health := reg.Health()
	if len(health) != 2 {
		t.Fatalf("expected one health entry per exchange, got %d", len(health))
	}
	names := map[string]bool{}
	for _, h := range health {
		names[h.Name] = true
	}
	if !names["binance"] || !names["bybit"] {
		t.Fatalf("expected health entries for binance and bybit, got %+v", health)
	}
}

func TestRegistryFetchSymbolNoDataAnywhereIsLowQuality(t *testing.T) {
	a := NewFakeSource("binance")
	b := NewFakeSource("bybit")

	reg := NewRegistry(testExchange(t, a), testExchange(t, b))
	_, agg := reg.FetchSymbol(context.Background(), "BTC-PERP", 0)
	if agg.Quality != domain.QualityLow {
		t.Fatalf("expected LOW quality when no exchange has ticker or OI data, got %v", agg.Quality)
	}
}

package market

import (
	"context"
	"fmt"

	"github.com/premovescan/premovescan/internal/domain"
)

// FakeSource is a deterministic in-memory Source for tests and offline runs.
// Concrete per-exchange REST clients are an external collaborator outside
// this specification's scope; FakeSource stands in for them the way the
// teacher's exchanges/okx book_stub.go and exchanges/kraken mock.go do.
type FakeSource struct {
	ExchangeName string
	Symbols      []string
	Candles      map[string][]domain.Candle
	Tickers      map[string]domain.Ticker
	OI           map[string]float64
	Funding      map[string]float64
	LS           map[string]float64
	Books        map[string]domain.BookPerExchange
}

func NewFakeSource(name string) *FakeSource {
	return &FakeSource{
		ExchangeName: name,
		Candles:      make(map[string][]domain.Candle),
		Tickers:      make(map[string]domain.Ticker),
		OI:           make(map[string]float64),
		Funding:      make(map[string]float64),
		LS:           make(map[string]float64),
		Books:        make(map[string]domain.BookPerExchange),
	}
}

func (f *FakeSource) Name() string { return f.ExchangeName }

func (f *FakeSource) ListFuturesSymbols(ctx context.Context) ([]string, error) {
	return f.Symbols, nil
}

func (f *FakeSource) FetchCandles(ctx context.Context, symbol string, limit int) ([]domain.Candle, error) {
	cs, ok := f.Candles[symbol]
	if !ok {
		return nil, fmt.Errorf("no candles for %s", symbol)
	}
	if limit > 0 && len(cs) > limit {
		cs = cs[len(cs)-limit:]
	}
	return cs, nil
}

func (f *FakeSource) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	t, ok := f.Tickers[symbol]
	if !ok {
		return domain.Ticker{}, fmt.Errorf("no ticker for %s", symbol)
	}
	return t, nil
}

func (f *FakeSource) FetchOI(ctx context.Context, symbol string) (float64, error) {
	v, ok := f.OI[symbol]
	if !ok {
		return 0, fmt.Errorf("no OI for %s", symbol)
	}
	return v, nil
}

func (f *FakeSource) FetchFunding(ctx context.Context, symbol string) (float64, error) {
	v, ok := f.Funding[symbol]
	if !ok {
		return 0, fmt.Errorf("no funding for %s", symbol)
	}
	return v, nil
}

func (f *FakeSource) FetchBook(ctx context.Context, symbol string, depth int) (domain.BookPerExchange, error) {
	b, ok := f.Books[symbol]
	if !ok {
		return domain.BookPerExchange{}, fmt.Errorf("no book for %s", symbol)
	}
	return b, nil
}

func (f *FakeSource) FetchLSRatio(ctx context.Context, symbol string) (float64, error) {
	v, ok := f.LS[symbol]
	if !ok {
		return 0, fmt.Errorf("no LS ratio for %s", symbol)
	}
	return v, nil
}

// Package market defines the uniform MarketSource view over N exchanges
// and the registry that fans fetches out across them with rate limiting,
// circuit breaking, and retry-on-transient-failure.
//
// Concrete exchange REST clients are an external collaborator; this
// package defines the Source contract plus the registry/resilience layer
// that wraps whatever Source implementations are configured.
package market

import (
	"context"
	"time"

	"github.com/premovescan/premovescan/internal/domain"
)

// Source is the per-exchange adapter contract. Missing data is reported
// as an error, never silently as zero.
type Source interface {
	Name() string
	ListFuturesSymbols(ctx context.Context) ([]string, error)
	FetchCandles(ctx context.Context, symbol string, limit int) ([]domain.Candle, error)
	FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error)
	FetchOI(ctx context.Context, symbol string) (float64, error)
	FetchFunding(ctx context.Context, symbol string) (float64, error)
	FetchBook(ctx context.Context, symbol string, depth int) (domain.BookPerExchange, error)
	FetchLSRatio(ctx context.Context, symbol string) (float64, error)
}

// FetchTimeout is the default per-call timeout.
const FetchTimeout = 8 * time.Second

// AggregatedOI/Funding/LS/Ticker/Book are the union-of-exchanges views the
// feature extractors and signal evaluators consume.

type AggregatedCandles struct {
	Symbol  string
	Candles []domain.Candle // from the exchange with the deepest history
}

type AggregatedResult struct {
	Symbol          string
	OIByExchange    map[string]float64
	FundingByExch   map[string]float64
	LSByExchange    map[string]float64
	TickerByExch    map[string]domain.Ticker
	BookByExchange  map[string]domain.BookPerExchange
	MissingExchanges []string // exchanges that failed or had no data this cycle
	Quality         domain.Quality
}

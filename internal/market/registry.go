package market

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/premovescan/premovescan/internal/domain"
)

// Registry holds the configured exchanges and provides the union-of-venues
// operations the scheduler needs: universe discovery and per-symbol
// aggregated fetches, with per-exchange fetches for a given symbol run
// concurrently.
type Registry struct {
	exchanges []*Exchange
}

func NewRegistry(exchanges ...*Exchange) *Registry {
	return &Registry{exchanges: exchanges}
}

func (r *Registry) Exchanges() []*Exchange { return r.exchanges }

// Health returns the adapter health snapshot for every configured exchange.
func (r *Registry) Health() []Health {
	out := make([]Health, len(r.exchanges))
	for i, ex := range r.exchanges {
		out[i] = ex.Health()
	}
	return out
}

// Universe returns the union of futures symbols across all configured
// exchanges, tolerating individual exchange failures.
func (r *Registry) Universe(ctx context.Context) ([]string, error) {
	set := make(map[string]bool)
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, ex := range r.exchanges {
		ex := ex
		g.Go(func() error {
			syms, err := ex.ListFuturesSymbols(ctx)
			if err != nil {
				return nil // a failed exchange degrades coverage, never aborts discovery
			}
			mu.Lock()
			for _, s := range syms {
				set[s] = true
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out, nil
}

// FetchSymbol gathers candles (from the deepest-history exchange) plus
// per-exchange OI/funding/LS/ticker/book views for one symbol. Per-exchange
// failures are recorded as missing data, never as zero, and never abort
// the symbol's pipeline.
func (r *Registry) FetchSymbol(ctx context.Context, symbol string, candleLimit int) (AggregatedCandles, AggregatedResult) {
	var (
		mu       sync.Mutex
		agg      = AggregatedResult{
			Symbol:         symbol,
			OIByExchange:   make(map[string]float64),
			FundingByExch:  make(map[string]float64),
			LSByExchange:   make(map[string]float64),
			TickerByExch:   make(map[string]domain.Ticker),
			BookByExchange: make(map[string]domain.BookPerExchange),
			Quality:        domain.QualityHigh,
		}
		candles AggregatedCandles
	)
	candles.Symbol = symbol

	g, ctx := errgroup.WithContext(ctx)
	for _, ex := range r.exchanges {
		ex := ex
		g.Go(func() error {
			cs, err := ex.FetchCandles(ctx, symbol, candleLimit)
			if err == nil {
				mu.Lock()
				if len(cs) > len(candles.Candles) {
					candles.Candles = cs
				}
				mu.Unlock()
			} else {
				markMissing(&mu, &agg, ex.Name())
			}
			return nil
		})
		g.Go(func() error {
			oi, err := ex.FetchOI(ctx, symbol)
			mu.Lock()
			if err == nil {
				agg.OIByExchange[ex.Name()] = oi
			} else {
				agg.MissingExchanges = append(agg.MissingExchanges, ex.Name())
			}
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			f, err := ex.FetchFunding(ctx, symbol)
			mu.Lock()
			if err == nil {
				agg.FundingByExch[ex.Name()] = f
			} else {
				agg.MissingExchanges = append(agg.MissingExchanges, ex.Name())
			}
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			ls, err := ex.FetchLSRatio(ctx, symbol)
			mu.Lock()
			if err == nil {
				agg.LSByExchange[ex.Name()] = ls
			} else {
				agg.MissingExchanges = append(agg.MissingExchanges, ex.Name())
			}
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			t, err := ex.FetchTicker(ctx, symbol)
			mu.Lock()
			if err == nil {
				agg.TickerByExch[ex.Name()] = t
			} else {
				agg.MissingExchanges = append(agg.MissingExchanges, ex.Name())
			}
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			b, err := ex.FetchBook(ctx, symbol, 50)
			mu.Lock()
			if err == nil {
				agg.BookByExchange[ex.Name()] = b
			} else {
				agg.MissingExchanges = append(agg.MissingExchanges, ex.Name())
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(agg.MissingExchanges) > 0 {
		agg.Quality = domain.QualityMed
	}
	if len(agg.TickerByExch) == 0 && len(agg.OIByExchange) == 0 {
		agg.Quality = domain.QualityLow
	}
	return candles, agg
}

func markMissing(mu *sync.Mutex, agg *AggregatedResult, exchange string) {
	mu.Lock()
	agg.MissingExchanges = append(agg.MissingExchanges, exchange)
	mu.Unlock()
}

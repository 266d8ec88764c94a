package market

import (
	"context"
	"sync"
	"time"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/errs"
	"github.com/premovescan/premovescan/internal/metrics"
)

// Health is a point-in-time adapter health snapshot for one exchange,
// surfaced through Registry.Health() and the ops /stats endpoint.
type Health struct {
	Name                string
	BreakerOpen         bool
	ConsecutiveFailures int
	LastLatency         time.Duration
}

// Exchange wraps a raw Source with the per-exchange resilience stack: a
// shared token bucket, a circuit breaker, a hard per-call timeout, and
// retry-with-backoff on transient failures.
type Exchange struct {
	src     Source
	bucket  *TokenBucket
	breaker *Breaker
	metrics *metrics.Collector

	healthMu            sync.Mutex
	consecutiveFailures int
	lastLatency         time.Duration
}

func NewExchange(src Source, bucket *TokenBucket, m *metrics.Collector) *Exchange {
	return &Exchange{
		src:     src,
		bucket:  bucket,
		breaker: NewBreaker(src.Name()),
		metrics: m,
	}
}

func (e *Exchange) Name() string { return e.src.Name() }

// Health returns a snapshot of this exchange's adapter health.
func (e *Exchange) Health() Health {
	e.healthMu.Lock()
	defer e.healthMu.Unlock()
	return Health{
		Name:                e.Name(),
		BreakerOpen:         e.breaker.Open(),
		ConsecutiveFailures: e.consecutiveFailures,
		LastLatency:         e.lastLatency,
	}
}

// call executes fn under the token bucket + breaker + timeout + retry stack,
// recording latency and failure metrics tagged by method.
func (e *Exchange) call(ctx context.Context, method string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	return withRetry(ctx, func() error {
		if err := e.bucket.Wait(ctx); err != nil {
			return errs.New(errs.TransientFetch, e.Name(), err)
		}
		if e.breaker.Open() {
			return errs.New(errs.TransientFetch, e.Name(), errBreakerOpen)
		}
		start := time.Now()
		_, err := e.breaker.Execute(func() (any, error) {
			return nil, fn(ctx)
		})
		elapsed := time.Since(start)

		e.healthMu.Lock()
		e.lastLatency = elapsed
		if err != nil {
			e.consecutiveFailures++
		} else {
			e.consecutiveFailures = 0
		}
		e.healthMu.Unlock()

		if e.metrics != nil {
			e.metrics.AdapterLatency.WithLabelValues(e.Name(), method).Observe(elapsed.Seconds())
			if err != nil {
				kind := "transient"
				if errs.Is(err, errs.PermanentFetch) {
					kind = "permanent"
				}
				e.metrics.AdapterFailures.WithLabelValues(e.Name(), method, kind).Inc()
			}
			if e.breaker.Open() {
				e.metrics.BreakerOpen.WithLabelValues(e.Name()).Set(1)
			} else {
				e.metrics.BreakerOpen.WithLabelValues(e.Name()).Set(0)
			}
		}
		return err
	})
}

var errBreakerOpen = breakerOpenErr{}

type breakerOpenErr struct{}

func (breakerOpenErr) Error() string { return "circuit breaker open" }

func (e *Exchange) ListFuturesSymbols(ctx context.Context) ([]string, error) {
	var out []string
	err := e.call(ctx, "list_futures_symbols", func(ctx context.Context) error {
		var err error
		out, err = e.src.ListFuturesSymbols(ctx)
		return err
	})
	return out, err
}

func (e *Exchange) FetchCandles(ctx context.Context, symbol string, limit int) ([]domain.Candle, error) {
	var out []domain.Candle
	err := e.call(ctx, "fetch_candles", func(ctx context.Context) error {
		var err error
		out, err = e.src.FetchCandles(ctx, symbol, limit)
		return err
	})
	return out, err
}

func (e *Exchange) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	var out domain.Ticker
	err := e.call(ctx, "fetch_ticker", func(ctx context.Context) error {
		var err error
		out, err = e.src.FetchTicker(ctx, symbol)
		return err
	})
	return out, err
}

func (e *Exchange) FetchOI(ctx context.Context, symbol string) (float64, error) {
	var out float64
	err := e.call(ctx, "fetch_oi", func(ctx context.Context) error {
		var err error
		out, err = e.src.FetchOI(ctx, symbol)
		return err
	})
	return out, err
}

func (e *Exchange) FetchFunding(ctx context.Context, symbol string) (float64, error) {
	var out float64
	err := e.call(ctx, "fetch_funding", func(ctx context.Context) error {
		var err error
		out, err = e.src.FetchFunding(ctx, symbol)
		return err
	})
	return out, err
}

func (e *Exchange) FetchBook(ctx context.Context, symbol string, depth int) (domain.BookPerExchange, error) {
	var out domain.BookPerExchange
	err := e.call(ctx, "fetch_book", func(ctx context.Context) error {
		var err error
		out, err = e.src.FetchBook(ctx, symbol, depth)
		return err
	})
	return out, err
}

func (e *Exchange) FetchLSRatio(ctx context.Context, symbol string) (float64, error) {
	var out float64
	err := e.call(ctx, "fetch_ls_ratio", func(ctx context.Context) error {
		var err error
		out, err = e.src.FetchLSRatio(ctx, symbol)
		return err
	})
	return out, err
}

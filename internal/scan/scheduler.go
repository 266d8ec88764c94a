// Package scan implements the scan scheduler: fixed-cadence cycles,
// universe discovery, bounded-concurrency per-symbol pipelines, and
// bootstrap-vs-incremental data policy.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/premovescan/premovescan/internal/alert"
	"github.com/premovescan/premovescan/internal/config"
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/errs"
	"github.com/premovescan/premovescan/internal/events"
	"github.com/premovescan/premovescan/internal/features"
	"github.com/premovescan/premovescan/internal/levels"
	"github.com/premovescan/premovescan/internal/market"
	"github.com/premovescan/premovescan/internal/metrics"
	"github.com/premovescan/premovescan/internal/scorer"
	"github.com/premovescan/premovescan/internal/signals"
	"github.com/premovescan/premovescan/internal/store"
)

// cycleDeadlineMargin is subtracted from the configured cadence to bound a
// cycle's total wall-clock budget, leaving headroom before the next cycle
// is due.
const cycleDeadlineMargin = 30 * time.Second

// Stats is a point-in-time snapshot of the scheduler's last completed
// cycle, surfaced by `run --stats`.
type Stats struct {
	LastCycleAt      time.Time
	LastCycleDur     time.Duration
	SymbolsScanned   int
	SymbolsDegraded  int
	Classifications  map[domain.Classification]int
}

// Scheduler drives scan cycles against a market.Registry, persisting
// results to a store.Store and routing alerts through an alert.Alerter.
type Scheduler struct {
	registry *market.Registry
	st       *store.Store
	metrics  *metrics.Collector
	alerter  alert.Alerter
	cfg      config.Config
	log      zerolog.Logger

	mu          sync.Mutex
	stats       Stats
	symbolLocks map[string]*sync.Mutex
	clusterHist map[string][]float64
}

func New(registry *market.Registry, st *store.Store, m *metrics.Collector, alerter alert.Alerter, cfg config.Config, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		registry:    registry,
		st:          st,
		metrics:     m,
		alerter:     alerter,
		cfg:         cfg,
		log:         log,
		symbolLocks: make(map[string]*sync.Mutex),
		clusterHist: make(map[string][]float64),
	}
}

// Stats returns a copy of the scheduler's most recent cycle snapshot.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	out.Classifications = make(map[domain.Classification]int, len(s.stats.Classifications))
	for k, v := range s.stats.Classifications {
		out.Classifications[k] = v
	}
	return out
}

// AdapterHealth returns the per-exchange adapter health snapshot.
func (s *Scheduler) AdapterHealth() []market.Health {
	return s.registry.Health()
}

// RunOnce executes a single scan cycle to completion or until its deadline
// elapses, whichever comes first.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	cadence := time.Duration(s.cfg.Scan.CadenceSeconds) * time.Second
	deadline := cadence - cycleDeadlineMargin
	if deadline <= 0 {
		deadline = cadence
	}
	cycleCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	start := time.Now()

	universe, err := s.registry.Universe(cycleCtx)
	if err != nil {
		return errs.Wrap(errs.Internal, "", "universe discovery", err)
	}

	sem := semaphore.NewWeighted(int64(s.cfg.Scan.Concurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex
	scanned, degraded := 0, 0
	classCounts := make(map[domain.Classification]int)

	for _, symbol := range universe {
		symbol := symbol
		if err := sem.Acquire(cycleCtx, 1); err != nil {
			break // cycle deadline hit; remaining symbols wait for next cycle
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			result, err := s.scanSymbol(cycleCtx, symbol)
			if err != nil {
				s.log.Error().Err(err).Str("symbol", symbol).Msg("symbol scan failed")
				return
			}

			mu.Lock()
			scanned++
			if result.Quality != domain.QualityHigh {
				degraded++
			}
			classCounts[result.Classification]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if s.metrics != nil {
		s.metrics.CycleDuration.Observe(time.Since(start).Seconds())
		s.metrics.SymbolsScanned.Add(float64(scanned))
		s.metrics.SymbolsDegraded.Add(float64(degraded))
		for c, n := range classCounts {
			s.metrics.Classifications.WithLabelValues(string(c)).Add(float64(n))
		}
	}

	s.mu.Lock()
	s.stats = Stats{
		LastCycleAt:     start,
		LastCycleDur:    time.Since(start),
		SymbolsScanned:  scanned,
		SymbolsDegraded: degraded,
		Classifications: classCounts,
	}
	s.mu.Unlock()

	return nil
}

// symbolLock returns (creating if needed) the serialization lock for a
// symbol, ensuring a symbol's pipeline never overlaps itself across
// adjacent cycles.
func (s *Scheduler) symbolLock(symbol string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.symbolLocks[symbol]
	if !ok {
		l = &sync.Mutex{}
		s.symbolLocks[symbol] = l
	}
	return l
}

// scanSymbol runs the full per-symbol pipeline: fetch, store append,
// feature extraction, signal evaluation, scoring, levels, event detection,
// and alert dispatch. A crashed evaluator downgrades quality to LOW and a
// zero score rather than aborting the symbol.
func (s *Scheduler) scanSymbol(ctx context.Context, symbol string) (result domain.ScanResult, err error) {
	lock := s.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	budget := time.Duration(s.cfg.Scan.PerSymbolTimeoutS) * time.Second
	symCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("symbol", symbol).Msg("symbol pipeline panicked")
			result = domain.ScanResult{Symbol: symbol, Quality: domain.QualityLow}
			err = nil
		}
	}()

	now := time.Now().UnixMilli()
	mode, modeErr := decideMode(symCtx, s.st, symbol)
	if modeErr != nil {
		mode = ModeBootstrap
	}

	candles, agg := s.registry.FetchSymbol(symCtx, symbol, candleLimitFor(mode))
	quality := agg.Quality

	if budgetExceeded(symCtx) {
		quality = domain.QualityLow
	}

	s.appendFetched(symCtx, symbol, now, candles, agg)

	bundle, bErr := s.buildBundle(symCtx, symbol)
	if bErr != nil {
		return domain.ScanResult{Symbol: symbol, T: now, Quality: domain.QualityLow}, nil
	}
	bundle.Quality = bundle.Quality.Worse(quality)

	sig := evaluateSafely(bundle, s.log, symbol)
	scored := scorer.Score(sig, bundle.PriceNow, bundle.Price7dAgo)

	var lvl *domain.Levels
	if scored.Classification == domain.ClassCritical || scored.Classification == domain.ClassHighAlert || scored.Classification == domain.ClassWatchlist {
		lvl = levels.Compute(bundle, levels.Inputs{
			Classification: scored.Classification,
			CascadeRatio:   scorer.CascadeRatio(sig),
			AccountUSD:     s.cfg.Risk.AccountUSD,
			RiskPct:        s.cfg.Risk.RiskPct,
		})
	}

	prev, _ := s.st.PriorScanResult(symCtx, symbol, now)
	evts := events.Detect(domain.ScanResult{FinalScore: scored.FinalScore, Classification: scored.Classification}, prev, bundle.PriceNow, bundle.Price6hAgo)

	result = domain.ScanResult{
		Symbol:         symbol,
		T:              now,
		BaseScore:      scored.BaseScore,
		FinalScore:     scored.FinalScore,
		Classification: scored.Classification,
		Signals:        sig,
		BonusesApplied: scored.BonusesApplied,
		PenaltyApplied: scored.PenaltyApplied,
		Levels:         lvl,
		Quality:        bundle.Quality,
		Events:         evts,
	}

	if err := s.st.SaveScanResult(symCtx, result); err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("save scan result")
	}

	s.trackClusterHistory(symbol, bundle)
	s.dispatchAlert(result)

	return result, nil
}

func budgetExceeded(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func evaluateSafely(b features.Bundle, log zerolog.Logger, symbol string) (sig [9]domain.Signal) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("symbol", symbol).Msg("signal evaluator panicked")
			for i := range sig {
				if sig[i].Name == "" {
					sig[i] = domain.Signal{Quality: domain.QualityLow}
				}
			}
		}
	}()
	return signals.Evaluate(b)
}

func (s *Scheduler) appendFetched(ctx context.Context, symbol string, now int64, candles market.AggregatedCandles, agg market.AggregatedResult) {
	for _, c := range candles.Candles {
		if err := s.st.AppendCandle(ctx, symbol, c); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("append candle")
		}
	}
	if len(agg.OIByExchange) > 0 {
		_ = s.st.AppendOI(ctx, symbol, domain.OIPoint{T: now, OIUSDByExchange: agg.OIByExchange})
	}
	if len(agg.FundingByExch) > 0 {
		_ = s.st.AppendFunding(ctx, symbol, domain.FundingPoint{T: now, RateByExchange: agg.FundingByExch})
	}
	if len(agg.LSByExchange) > 0 {
		_ = s.st.AppendLS(ctx, symbol, domain.LSPoint{T: now, RatioByExchange: agg.LSByExchange})
	}
	if len(agg.TickerByExch) > 0 {
		price, vol, perExchange := aggregateTicker(agg.TickerByExch)
		_ = s.st.AppendTicker(ctx, symbol, domain.Ticker{T: now, Price: price, Vol24h: vol, PerExchange: perExchange})
	}
	if len(agg.BookByExchange) > 0 {
		_ = s.st.AppendBook(ctx, symbol, domain.BookSnapshot{T: now, PerExchange: agg.BookByExchange})
	}
}

// aggregateTicker picks the price from the exchange with the highest
// 24h volume as the representative price, sums volume across exchanges,
// and returns a per-exchange 24h volume map for Ticker.PerExchange.
func aggregateTicker(byExchange map[string]domain.Ticker) (price, totalVol float64, perExchange map[string]float64) {
	var maxVol float64
	haveRepresentative := false
	perExchange = make(map[string]float64, len(byExchange))
	for ex, t := range byExchange {
		perExchange[ex] = t.Vol24h
		totalVol += t.Vol24h
		if !haveRepresentative || t.Vol24h > maxVol {
			maxVol = t.Vol24h
			price = t.Price
			haveRepresentative = true
		}
	}
	return price, totalVol, perExchange
}

func (s *Scheduler) buildBundle(ctx context.Context, symbol string) (features.Bundle, error) {
	candles, err := s.st.LatestCandles(ctx, symbol, bootstrapCandleLimit)
	if err != nil {
		return features.Bundle{}, err
	}
	oi, _ := s.st.LatestOI(ctx, symbol, store.RetentionOf(store.KindOI))
	funding, _ := s.st.LatestFunding(ctx, symbol, store.RetentionOf(store.KindFunding))
	ls, _ := s.st.LatestLS(ctx, symbol, store.RetentionOf(store.KindLS))
	tickers, _ := s.st.LatestTickers(ctx, symbol, 1)
	book, _ := s.st.LatestBook(ctx, symbol)

	s.mu.Lock()
	hist := append([]float64(nil), s.clusterHist[symbol]...)
	s.mu.Unlock()

	return features.Build(symbol, candles, oi, funding, ls, tickers, book, hist), nil
}

func (s *Scheduler) trackClusterHistory(symbol string, b features.Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hist := append(s.clusterHist[symbol], b.BidCluster15pc.LargestClusterUSD)
	if len(hist) > 10 {
		hist = hist[len(hist)-10:]
	}
	s.clusterHist[symbol] = hist
}

func (s *Scheduler) dispatchAlert(result domain.ScanResult) {
	if s.alerter == nil {
		return
	}
	a, ok := alert.FromScanResult(result)
	if !ok {
		return
	}
	if a.Severity != alert.SeverityEvent && !meetsMinClassification(result.Classification, s.cfg.Alerts.MinClassification) {
		return
	}
	if err := s.alerter.Send(a); err != nil {
		s.log.Error().Err(err).Str("symbol", result.Symbol).Msg("alert dispatch failed")
	}
}

func meetsMinClassification(c domain.Classification, min string) bool {
	minClass := domain.Classification(min)
	return c.Rank() >= minClass.Rank()
}

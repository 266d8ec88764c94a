// Package metrics exposes Prometheus collectors for scan-cycle and adapter
// observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the counters/histograms emitted by the scan engine.
type Collector struct {
	CycleDuration    prometheus.Histogram
	SymbolsScanned   prometheus.Counter
	SymbolsDegraded  prometheus.Counter
	Classifications  *prometheus.CounterVec
	AdapterLatency   *prometheus.HistogramVec
	AdapterFailures  *prometheus.CounterVec
	BreakerOpen      *prometheus.GaugeVec
}

// New registers and returns a fresh Collector against reg. Pass
// prometheus.NewRegistry() in tests to avoid global-registry collisions.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "premovescan",
			Subsystem: "scan",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a full scan cycle across all symbols.",
			Buckets:   prometheus.DefBuckets,
		}),
		SymbolsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "premovescan",
			Subsystem: "scan",
			Name:      "symbols_scanned_total",
			Help:      "Number of symbol pipelines completed.",
		}),
		SymbolsDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "premovescan",
			Subsystem: "scan",
			Name:      "symbols_degraded_total",
			Help:      "Number of symbol pipelines that completed with degraded quality.",
		}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "premovescan",
			Subsystem: "scan",
			Name:      "classifications_total",
			Help:      "Count of scan results by classification.",
		}, []string{"classification"}),
		AdapterLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "premovescan",
			Subsystem: "market",
			Name:      "adapter_latency_seconds",
			Help:      "Latency of MarketSource fetch calls by exchange and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"exchange", "method"}),
		AdapterFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "premovescan",
			Subsystem: "market",
			Name:      "adapter_failures_total",
			Help:      "Count of MarketSource fetch failures by exchange, method, and kind.",
		}, []string{"exchange", "method", "kind"}),
		BreakerOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "premovescan",
			Subsystem: "market",
			Name:      "breaker_open",
			Help:      "1 if the exchange's circuit breaker is open, else 0.",
		}, []string{"exchange"}),
	}
	reg.MustRegister(c.CycleDuration, c.SymbolsScanned, c.SymbolsDegraded,
		c.Classifications, c.AdapterLatency, c.AdapterFailures, c.BreakerOpen)
	return c
}

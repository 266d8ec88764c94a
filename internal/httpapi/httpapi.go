// Package httpapi exposes the daemon's minimal ops HTTP surface:
// /healthz for liveness probes and /stats for the same snapshot `run
// --stats` prints to stdout, for operators who'd rather poll an endpoint
// than tail logs.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/premovescan/premovescan/internal/market"
	"github.com/premovescan/premovescan/internal/scan"
)

// StatsProvider is satisfied by *scan.Scheduler.
type StatsProvider interface {
	Stats() scan.Stats
	AdapterHealth() []market.Health
}

// NewServer builds the ops HTTP surface; addr is only used by the caller
// to construct an *http.Server, this function just wires the handler.
func NewServer(scheduler StatsProvider) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/stats", handleStats(scheduler)).Methods(http.MethodGet)
	return r
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statsResponse struct {
	LastCycleAt     string                  `json:"last_cycle_at"`
	LastCycleDurMS  int64                   `json:"last_cycle_duration_ms"`
	SymbolsScanned  int                     `json:"symbols_scanned"`
	SymbolsDegraded int                     `json:"symbols_degraded"`
	Classifications map[string]int          `json:"classifications"`
	AdapterHealth   []adapterHealthResponse `json:"adapter_health"`
}

type adapterHealthResponse struct {
	Exchange            string `json:"exchange"`
	BreakerOpen         bool   `json:"breaker_open"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	LastLatencyMS       int64  `json:"last_latency_ms"`
}

func handleStats(scheduler StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := scheduler.Stats()
		classes := make(map[string]int, len(s.Classifications))
		for c, n := range s.Classifications {
			classes[string(c)] = n
		}
		health := scheduler.AdapterHealth()
		adapters := make([]adapterHealthResponse, len(health))
		for i, h := range health {
			adapters[i] = adapterHealthResponse{
				Exchange:            h.Name,
				BreakerOpen:         h.BreakerOpen,
				ConsecutiveFailures: h.ConsecutiveFailures,
				LastLatencyMS:       h.LastLatency.Milliseconds(),
			}
		}
		resp := statsResponse{
			LastCycleAt:     s.LastCycleAt.Format(httpTimeFormat),
			LastCycleDurMS:  s.LastCycleDur.Milliseconds(),
			SymbolsScanned:  s.SymbolsScanned,
			SymbolsDegraded: s.SymbolsDegraded,
			Classifications: classes,
			AdapterHealth:   adapters,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

const httpTimeFormat = "2006-01-02T15:04:05Z07:00"

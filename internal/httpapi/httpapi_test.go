package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/market"
	"github.com/premovescan/premovescan/internal/scan"
)

type fakeStatsProvider struct {
	stats  scan.Stats
	health []market.Health
}

func (f fakeStatsProvider) Stats() scan.Stats               { return f.stats }
func (f fakeStatsProvider) AdapterHealth() []market.Health { return f.health }

func TestHealthzReturnsOK(t *testing.T) {
	srv := httptest.NewServer(NewServer(fakeStatsProvider{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestStatsReturnsJSONSnapshot(t *testing.T) {
	provider := fakeStatsProvider{
		stats: scan.Stats{
			LastCycleAt:     time.Unix(0, 0).UTC(),
			SymbolsScanned:  5,
			SymbolsDegraded: 1,
			Classifications: map[domain.Classification]int{domain.ClassWatchlist: 2},
		},
		health: []market.Health{
			{Name: "binance", BreakerOpen: true, ConsecutiveFailures: 3, LastLatency: 250 * time.Millisecond},
		},
	}
	srv := httptest.NewServer(NewServer(provider))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("GET /stats: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.SymbolsScanned != 5 || got.SymbolsDegraded != 1 {
		t.Fatalf("unexpected stats payload: %+v", got)
	}
	if got.Classifications["WATCHLIST"] != 2 {
		t.Fatalf("expected WATCHLIST count 2, got %+v", got.Classifications)
	}
	if len(got.AdapterHealth) != 1 {
		t.Fatalf("expected 1 adapter health entry, got %+v", got.AdapterHealth)
	}
	h := got.AdapterHealth[0]
	if h.Exchange != "binance" || !h.BreakerOpen || h.ConsecutiveFailures != 3 || h.LastLatencyMS != 250 {
		t.Fatalf("unexpected adapter health entry: %+v", h)
	}
}

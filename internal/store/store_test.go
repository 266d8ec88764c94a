package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/premovescan/premovescan/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "premovescan.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type samplePayload struct {
	Value float64 `json:"value"`
}

func TestAppendAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		if err := s.Append(ctx, "BTC-PERP", KindOI, i, samplePayload{Value: float64(i)}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	n, err := s.Count(ctx, "BTC-PERP", KindOI)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 5 {
		t.Fatalf("count = %d, want 5", n)
	}
}

func TestAppendIsIdempotentAtSameTimestamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "BTC-PERP", KindOI, 100, samplePayload{Value: 1}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := s.Append(ctx, "BTC-PERP", KindOI, 100, samplePayload{Value: 2}); err != nil {
		t.Fatalf("second append at same t: %v", err)
	}
	n, err := s.Count(ctx, "BTC-PERP", KindOI)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1 (same-t write should upsert, not insert)", n)
	}

	var got samplePayload
	err = s.Latest(ctx, "BTC-PERP", KindOI, 1, func(t int64, payload []byte) error {
		return json.Unmarshal(payload, &got)
	})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.Value != 2 {
		t.Fatalf("expected the later write's payload to win, got %+v", got)
	}
}

func TestAppendEnforcesRetentionCap(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	limit := RetentionOf(KindFunding)
	for i := int64(0); i < int64(limit)+10; i++ {
		if err := s.Append(ctx, "BTC-PERP", KindFunding, i, samplePayload{Value: float64(i)}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	n, err := s.Count(ctx, "BTC-PERP", KindFunding)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != limit {
		t.Fatalf("count = %d, want retention cap of %d", n, limit)
	}
}

func TestRetentionOfBookKeepsOnlyLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		if err := s.Append(ctx, "BTC-PERP", KindBook, i, samplePayload{Value: float64(i)}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	n, err := s.Count(ctx, "BTC-PERP", KindBook)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1 (book is ephemeral, only the latest is kept)", n)
	}
}

func TestRangeReturnsAscendingWithinBounds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := int64(0); i < 10; i++ {
		if err := s.Append(ctx, "BTC-PERP", KindCandle, i, samplePayload{Value: float64(i)}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	var ts []int64
	err := s.Range(ctx, "BTC-PERP", KindCandle, 3, 6, func(t int64, payload []byte) error {
		ts = append(ts, t)
		return nil
	})
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	want := []int64{3, 4, 5, 6}
	if len(ts) != len(want) {
		t.Fatalf("range returned %v, want %v", ts, want)
	}
	for i := range want {
		if ts[i] != want[i] {
			t.Fatalf("range returned %v, want %v", ts, want)
		}
	}
}

func TestLatestReturnsAscendingMostRecentN(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := int64(0); i < 10; i++ {
		if err := s.Append(ctx, "BTC-PERP", KindTicker, i, samplePayload{Value: float64(i)}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	var ts []int64
	err := s.Latest(ctx, "BTC-PERP", KindTicker, 3, func(t int64, payload []byte) error {
		ts = append(ts, t)
		return nil
	})
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	want := []int64{7, 8, 9}
	if len(ts) != len(want) {
		t.Fatalf("latest returned %v, want %v", ts, want)
	}
	for i := range want {
		if ts[i] != want[i] {
			t.Fatalf("latest returned %v, want %v (must be ascending)", ts, want)
		}
	}
}

func TestSaveScanResultRetainsLastTwoPerSymbol(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := int64(0); i < 3; i++ {
		r := domain.ScanResult{Symbol: "BTC-PERP", T: i, FinalScore: float64(i)}
		if err := s.SaveScanResult(ctx, r); err != nil {
			t.Fatalf("save scan result %d: %v", i, err)
		}
	}
	prior, err := s.PriorScanResult(ctx, "BTC-PERP", 3)
	if err != nil {
		t.Fatalf("prior scan result: %v", err)
	}
	if prior == nil || prior.T != 2 {
		t.Fatalf("expected the most recent prior scan result (t=2), got %+v", prior)
	}

	// the oldest (t=0) should have been trimmed once a third result landed.
	oldest, err := s.PriorScanResult(ctx, "BTC-PERP", 1)
	if err != nil {
		t.Fatalf("prior scan result before t=1: %v", err)
	}
	if oldest != nil {
		t.Fatalf("expected t=0 to have been trimmed from history, got %+v", oldest)
	}
}

func TestPriorScanResultNoneReturnsNil(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	prior, err := s.PriorScanResult(ctx, "BTC-PERP", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prior != nil {
		t.Fatalf("expected nil for a symbol with no scan history, got %+v", prior)
	}
}

func TestSaveDeleteListTrades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	trade := domain.RegisteredTrade{ID: "t1", Symbol: "BTC-PERP", Entry: 100, State: domain.TradeState("open"), OpenedAt: time.Unix(0, 0)}
	if err := s.SaveTrade(ctx, trade); err != nil {
		t.Fatalf("save trade: %v", err)
	}
	open, err := s.ListOpenTrades(ctx)
	if err != nil {
		t.Fatalf("list trades: %v", err)
	}
	if len(open) != 1 || open[0].ID != "t1" {
		t.Fatalf("expected 1 open trade with ID t1, got %+v", open)
	}

	if err := s.DeleteTrade(ctx, "t1"); err != nil {
		t.Fatalf("delete trade: %v", err)
	}
	open, err = s.ListOpenTrades(ctx)
	if err != nil {
		t.Fatalf("list trades after delete: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no open trades after delete, got %+v", open)
	}
}

func TestCleanupRemovesOldSeriesButKeepsBook(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour).UnixMilli()
	recent := time.Now().UnixMilli()
	if err := s.Append(ctx, "BTC-PERP", KindCandle, old, samplePayload{Value: 1}); err != nil {
		t.Fatalf("append old: %v", err)
	}
	if err := s.Append(ctx, "BTC-PERP", KindCandle, recent, samplePayload{Value: 2}); err != nil {
		t.Fatalf("append recent: %v", err)
	}
	if err := s.Append(ctx, "BTC-PERP", KindBook, old, samplePayload{Value: 3}); err != nil {
		t.Fatalf("append old book snapshot: %v", err)
	}

	if err := s.Cleanup(ctx, 1); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	n, err := s.Count(ctx, "BTC-PERP", KindCandle)
	if err != nil {
		t.Fatalf("count candles: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the recent candle to survive cleanup, got %d", n)
	}

	nBook, err := s.Count(ctx, "BTC-PERP", KindBook)
	if err != nil {
		t.Fatalf("count book: %v", err)
	}
	if nBook != 1 {
		t.Fatalf("expected the book snapshot to be exempt from age-based cleanup, got %d", nBook)
	}
}

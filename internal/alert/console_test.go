package alert

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/premovescan/premovescan/internal/domain"
)

func captureSend(t *testing.T, a Alert) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	sink := NewConsoleSink(log)
	if err := sink.Send(a); err != nil {
		t.Fatalf("Send: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return got
}

func TestConsoleSinkFullSeverityIncludesStopAndPosition(t *testing.T) {
	a := Alert{
		Symbol:         "BTC-PERP",
		Classification: domain.ClassCritical,
		Severity:       SeverityFull,
		Score:          90,
		Levels: &domain.Levels{
			Stop:        95,
			StopMethod:  "swing_low",
			EntryLow:    98,
			EntryHigh:   100,
			EntryIdeal:  99,
			RR:          2.5,
			PositionUSD: 400,
		},
	}
	got := captureSend(t, a)
	for _, key := range []string{"stop", "stop_method", "rr", "position_usd", "entry_low", "entry_high", "entry_ideal"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("expected FULL severity log to include %q, got %+v", key, got)
		}
	}
}

func TestConsoleSinkBandSeverityOmitsStopAndPosition(t *testing.T) {
	a := Alert{
		Symbol:         "ETH-PERP",
		Classification: domain.ClassWatchlist,
		Severity:       SeverityBand,
		Score:          55,
		Levels: &domain.Levels{
			Stop:        95,
			StopMethod:  "swing_low",
			EntryLow:    98,
			EntryHigh:   100,
			EntryIdeal:  99,
			RR:          2.5,
			PositionUSD: 400,
		},
	}
	got := captureSend(t, a)
	for _, key := range []string{"stop", "stop_method", "rr", "position_usd"} {
		if _, ok := got[key]; ok {
			t.Fatalf("expected BAND severity log to omit %q, got %+v", key, got)
		}
	}
	for _, key := range []string{"entry_low", "entry_high", "entry_ideal"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("expected BAND severity log to include %q, got %+v", key, got)
		}
	}
}

// Package alert implements the sink-neutral alert protocol and a console
// sink; chat-bot and other sinks are out of scope but slot in behind the
// same Alerter interface.
package alert

import "github.com/premovescan/premovescan/internal/domain"

// Severity mirrors the classification tiers that warrant an alert, plus a
// dedicated tier for cross-cycle events that fire on their own whenever
// the final score is at or above the WATCHLIST cutoff (48), regardless of
// classification.
type Severity string

const (
	SeverityFull     Severity = "FULL"     // CRITICAL/HIGH_ALERT: breakdown + levels
	SeverityBand     Severity = "BAND"     // WATCHLIST: breakdown + entry band only
	SeverityEvent    Severity = "EVENT"    // event-triggered, classification < WATCHLIST
)

// Alert is the sink-neutral structured message handed to an Alerter.
type Alert struct {
	Severity       Severity
	Symbol         string
	Classification domain.Classification
	Score          float64
	Signals        [9]domain.Signal
	Bonuses        []string
	PenaltyApplied bool
	Levels         *domain.Levels
	Events         []domain.Event
}

// Alerter renders and dispatches an Alert; sinks are interchangeable.
type Alerter interface {
	Send(a Alert) error
}

// FromScanResult builds the Alert for a completed ScanResult and applies
// the classification/event routing rules. Returns ok=false if nothing
// warrants an alert this cycle.
func FromScanResult(r domain.ScanResult) (Alert, bool) {
	a := Alert{
		Symbol:         r.Symbol,
		Classification: r.Classification,
		Score:          r.FinalScore,
		Signals:        r.Signals,
		Bonuses:        r.BonusesApplied,
		PenaltyApplied: r.PenaltyApplied,
		Levels:         r.Levels,
		Events:         r.Events,
	}

	switch r.Classification {
	case domain.ClassCritical, domain.ClassHighAlert:
		a.Severity = SeverityFull
		return a, true
	case domain.ClassWatchlist:
		a.Severity = SeverityBand
		return a, true
	}

	if len(r.Events) > 0 && r.FinalScore >= 48 {
		a.Severity = SeverityEvent
		return a, true
	}

	return Alert{}, false
}

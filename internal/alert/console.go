package alert

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ConsoleSink renders alerts as structured log lines via the scan engine's
// logger; a sink is just a logger write.
type ConsoleSink struct {
	log zerolog.Logger
}

func NewConsoleSink(log zerolog.Logger) *ConsoleSink {
	return &ConsoleSink{log: log}
}

func (c *ConsoleSink) Send(a Alert) error {
	ev := c.log.Info()
	if a.Classification == "CRITICAL" {
		ev = c.log.Warn()
	}

	ev.Str("symbol", a.Symbol).
		Str("classification", string(a.Classification)).
		Float64("score", a.Score).
		Str("severity", string(a.Severity)).
		Str("bonuses", strings.Join(a.Bonuses, ",")).
		Bool("penalty", a.PenaltyApplied)

	if a.Levels != nil {
		ev.Float64("entry_low", a.Levels.EntryLow).
			Float64("entry_high", a.Levels.EntryHigh).
			Float64("entry_ideal", a.Levels.EntryIdeal)

		if a.Severity == SeverityFull {
			ev.Float64("stop", a.Levels.Stop).
				Str("stop_method", a.Levels.StopMethod).
				Float64("rr", a.Levels.RR).
				Float64("position_usd", a.Levels.PositionUSD)
		}
	}

	events := make([]string, 0, len(a.Events))
	for _, e := range a.Events {
		events = append(events, string(e))
	}
	ev.Str("events", strings.Join(events, ","))

	ev.Msg(renderHeadline(a))
	return nil
}

func renderHeadline(a Alert) string {
	return fmt.Sprintf("%s %s score=%.1f", a.Symbol, a.Classification, a.Score)
}

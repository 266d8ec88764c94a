// Package trademonitor implements 5-minute price polling of registered
// trades, the staged trailing-stop schedule, TP-hit emission, and
// score-degradation warnings. The command surface that creates/closes/
// adjusts trades is out of scope; this package owns only the lifecycle
// mutations a registered trade goes through after it opens.
package trademonitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/premovescan/premovescan/internal/alert"
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/market"
	"github.com/premovescan/premovescan/internal/store"
)

// PollInterval is the trade monitor's independent tick.
const PollInterval = 5 * time.Minute

// trailStep is one rung of the staged trailing-stop schedule: once the
// trade's gain crosses GainPct of entry, the stop moves up to StopPct of
// entry (both expressed as a fraction, e.g. 0.05 = 5%).
type trailStep struct {
	GainPct float64
	StopPct float64
}

// trailSchedule is the staged trail: +5%→BE, +10%→+5, +15%→+10, +25%→+18,
// +40%→+30, +60%→+45.
var trailSchedule = []trailStep{
	{0.05, 0.00},
	{0.10, 0.05},
	{0.15, 0.10},
	{0.25, 0.18},
	{0.40, 0.30},
	{0.60, 0.45},
}

const degradationDropThreshold = 10.0
const degradationFloorScore = 48.0

// Monitor polls registered trades on PollInterval, mutating stops and
// emitting TP-hit and degradation alerts through an alert.Alerter.
type Monitor struct {
	st       *store.Store
	registry *market.Registry
	alerter  alert.Alerter
	log      zerolog.Logger
	dedup    DedupCache

	lastDigestAt time.Time
}

func New(st *store.Store, registry *market.Registry, alerter alert.Alerter, log zerolog.Logger) *Monitor {
	return &Monitor{st: st, registry: registry, alerter: alerter, log: log, dedup: newMemoryDedupCache()}
}

// WithDedupCache overrides the default in-memory dedup cache, e.g. with a
// RedisDedupCache so DEGRADATION suppression also survives process
// restarts. TP_HIT repeats are suppressed by the trade's persisted TPsHit
// flags, not by this cache.
func (m *Monitor) WithDedupCache(c DedupCache) *Monitor {
	m.dedup = c
	return m
}

// PollOnce evaluates every open trade once: updates trail stops, detects
// TP hits, checks for score degradation, and on the hour renders a digest.
func (m *Monitor) PollOnce(ctx context.Context) error {
	trades, err := m.st.ListOpenTrades(ctx)
	if err != nil {
		return err
	}

	digestDue := time.Since(m.lastDigestAt) >= time.Hour

	var digestLines []digestLine
	for _, t := range trades {
		if t.State != domain.TradeOpen {
			continue
		}
		updated, line, err := m.pollTrade(ctx, t)
		if err != nil {
			m.log.Error().Err(err).Str("symbol", t.Symbol).Msg("poll trade failed")
			continue
		}
		if digestDue {
			digestLines = append(digestLines, line)
		}
		if updated.State == domain.TradeClosed {
			_ = m.st.DeleteTrade(ctx, updated.ID)
		} else {
			_ = m.st.SaveTrade(ctx, updated)
		}
	}

	if digestDue {
		m.renderDigest(digestLines)
		m.lastDigestAt = time.Now()
	}
	return nil
}

type digestLine struct {
	Symbol string
	Price  float64
	PnLPct float64
	Score  float64
}

// pollTrade fetches the latest ticker, applies the trail schedule, checks
// TP hits, and checks degradation, returning the mutated trade.
func (m *Monitor) pollTrade(ctx context.Context, t domain.RegisteredTrade) (domain.RegisteredTrade, digestLine, error) {
	price, err := m.latestPrice(ctx, t.Symbol)
	if err != nil {
		return t, digestLine{}, err
	}
	if price > t.HighWater {
		t.HighWater = price
	}

	applyTrail(&t, price)

	for i, tp := range t.TPs {
		if !t.TPsHit[i] && tp > 0 && price >= tp {
			t.TPsHit[i] = true
			m.send(alert.Alert{
				Severity: alert.SeverityEvent,
				Symbol:   t.Symbol,
				Score:    0,
				Events:   []domain.Event{domain.EventTPHit},
			})
			if i == 3 {
				t.State = domain.TradeClosed
			}
		}
	}

	if price <= t.Stop && t.State == domain.TradeOpen {
		t.State = domain.TradeClosed
		m.send(alert.Alert{Severity: alert.SeverityEvent, Symbol: t.Symbol, Events: []domain.Event{domain.EventStopHit}})
	}

	m.checkDegradation(ctx, &t)

	pnlPct := (price - t.Entry) / t.Entry
	return t, digestLine{Symbol: t.Symbol, Price: price, PnLPct: pnlPct, Score: t.OpenScore}, nil
}

// applyTrail walks the schedule from the top down and moves the stop up
// to the highest rung the gain-from-entry has crossed; the stop never
// moves down.
func applyTrail(t *domain.RegisteredTrade, price float64) {
	if t.Entry <= 0 {
		return
	}
	gain := price/t.Entry - 1
	for i := len(trailSchedule) - 1; i >= 0; i-- {
		step := trailSchedule[i]
		if gain >= step.GainPct {
			newStop := t.Entry * (1 + step.StopPct)
			if newStop > t.Stop {
				t.Stop = newStop
				t.TrailStage = i + 1
			}
			return
		}
	}
}

// checkDegradation compares the trade's latest reused ScanResult score
// against its opening score, emitting a DEGRADATION warning at most once
// per threshold crossing. Dedup runs through m.dedup rather than
// RegisteredTrade.DegradedAt alone, since DegradedAt carries a json:"-"
// tag and does not survive the store round-trip between polls.
func (m *Monitor) checkDegradation(ctx context.Context, t *domain.RegisteredTrade) {
	latest, err := m.st.PriorScanResult(ctx, t.Symbol, time.Now().UnixMilli()+1)
	if err != nil || latest == nil {
		return
	}
	if t.DegradedAt == nil {
		t.DegradedAt = make(map[int]bool)
	}

	dropped := t.OpenScore-latest.FinalScore >= degradationDropThreshold
	belowFloor := latest.FinalScore < degradationFloorScore
	if !dropped && !belowFloor {
		return
	}

	key := 0
	if belowFloor {
		key = 1
	}
	if t.DegradedAt[key] {
		return
	}
	t.DegradedAt[key] = true
	if m.dedup != nil && !m.dedup.MarkIfAbsent(ctx, t.ID+":degraded:"+degradationDedupSuffix(key)) {
		return
	}
	m.send(alert.Alert{
		Severity: alert.SeverityEvent,
		Symbol:   t.Symbol,
		Score:    latest.FinalScore,
		Events:   []domain.Event{domain.EventDegraded},
	})
}

func degradationDedupSuffix(key int) string {
	if key == 1 {
		return "floor"
	}
	return "drop"
}

func (m *Monitor) latestPrice(ctx context.Context, symbol string) (float64, error) {
	tickers, err := m.st.LatestTickers(ctx, symbol, 1)
	if err != nil {
		return 0, err
	}
	if len(tickers) == 0 {
		return 0, nil
	}
	return tickers[len(tickers)-1].Price, nil
}

func (m *Monitor) send(a alert.Alert) {
	if m.alerter == nil {
		return
	}
	if err := m.alerter.Send(a); err != nil {
		m.log.Error().Err(err).Str("symbol", a.Symbol).Msg("trade monitor alert failed")
	}
}

func (m *Monitor) renderDigest(lines []digestLine) {
	if m.alerter == nil {
		return
	}
	for _, l := range lines {
		m.log.Info().
			Str("symbol", l.Symbol).
			Float64("price", l.Price).
			Float64("pnl_pct", l.PnLPct*100).
			Float64("score", l.Score).
			Msg("hourly trade digest")
	}
}

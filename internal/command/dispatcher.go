package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/premovescan/premovescan/internal/config"
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/store"
)

// Scanner is satisfied by *scan.Scheduler; kept narrow so this package
// doesn't need to import scan directly.
type Scanner interface {
	RunOnce(ctx context.Context) error
}

// StoreDispatcher is the Dispatcher implementation the operator command
// surface runs against: it resolves /trade, /close, /status, /adjust,
// /scan and /watchlist against a Store and, for /scan, a Scanner.
type StoreDispatcher struct {
	st      *store.Store
	scanner Scanner
	risk    config.RiskConfig
}

func NewStoreDispatcher(st *store.Store, scanner Scanner, risk config.RiskConfig) *StoreDispatcher {
	return &StoreDispatcher{st: st, scanner: scanner, risk: risk}
}

func (d *StoreDispatcher) Dispatch(c Command) (string, error) {
	ctx := context.Background()
	switch c.Kind {
	case KindTrade:
		return d.trade(ctx, c)
	case KindClose:
		return d.close(ctx, c)
	case KindStatus:
		return d.status(ctx)
	case KindAdjust:
		return d.adjust(ctx, c)
	case KindScan:
		return d.scan(ctx)
	case KindWatchlist:
		return d.watchlist(ctx)
	default:
		return "", fmt.Errorf("unhandled command kind: %s", c.Kind)
	}
}

func (d *StoreDispatcher) trade(ctx context.Context, c Command) (string, error) {
	open, err := d.st.ListOpenTrades(ctx)
	if err != nil {
		return "", err
	}
	if d.risk.MaxOpenTrades > 0 && len(open) >= d.risk.MaxOpenTrades {
		return "", fmt.Errorf("max open trades (%d) reached", d.risk.MaxOpenTrades)
	}
	for _, t := range open {
		if t.Symbol == c.Symbol {
			return "", fmt.Errorf("%s already has an open trade", c.Symbol)
		}
	}

	trade := domain.RegisteredTrade{
		ID:       uuid.NewString(),
		Symbol:   c.Symbol,
		Entry:    c.Entry,
		SizeUSD:  c.SizeUSD,
		Stop:     c.Entry * (1 - c.StopPct),
		State:    domain.TradeOpen,
		OpenedAt: time.Now(),
	}

	if prior, err := d.st.PriorScanResult(ctx, c.Symbol, time.Now().UnixMilli()+1); err == nil && prior != nil {
		trade.OpenScore = prior.FinalScore
		if prior.Levels != nil {
			trade.Stop = prior.Levels.Stop
			trade.TPs = prior.Levels.TPs
		}
	}

	if err := d.st.SaveTrade(ctx, trade); err != nil {
		return "", err
	}
	return fmt.Sprintf("opened %s id=%s entry=%.4f stop=%.4f", trade.Symbol, trade.ID, trade.Entry, trade.Stop), nil
}

func (d *StoreDispatcher) close(ctx context.Context, c Command) (string, error) {
	open, err := d.st.ListOpenTrades(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range open {
		if t.Symbol == c.Symbol {
			if err := d.st.DeleteTrade(ctx, t.ID); err != nil {
				return "", err
			}
			return fmt.Sprintf("closed %s id=%s", t.Symbol, t.ID), nil
		}
	}
	return "", fmt.Errorf("no open trade for %s", c.Symbol)
}

func (d *StoreDispatcher) status(ctx context.Context) (string, error) {
	open, err := d.st.ListOpenTrades(ctx)
	if err != nil {
		return "", err
	}
	if len(open) == 0 {
		return "no open trades", nil
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Symbol < open[j].Symbol })
	var b strings.Builder
	for _, t := range open {
		fmt.Fprintf(&b, "%s entry=%.4f stop=%.4f trail_stage=%d open_score=%.1f\n",
			t.Symbol, t.Entry, t.Stop, t.TrailStage, t.OpenScore)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func (d *StoreDispatcher) adjust(ctx context.Context, c Command) (string, error) {
	open, err := d.st.ListOpenTrades(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range open {
		if t.Symbol != c.Symbol {
			continue
		}
		switch c.Field {
		case AdjustStop:
			t.Stop = c.Value
		case AdjustTP1:
			t.TPs[0] = c.Value
		case AdjustTP2:
			t.TPs[1] = c.Value
		case AdjustTP3:
			t.TPs[2] = c.Value
		default:
			return "", fmt.Errorf("unrecognized adjust field: %s", c.Field)
		}
		if err := d.st.SaveTrade(ctx, t); err != nil {
			return "", err
		}
		return fmt.Sprintf("adjusted %s %s=%.4f", t.Symbol, c.Field, c.Value), nil
	}
	return "", fmt.Errorf("no open trade for %s", c.Symbol)
}

func (d *StoreDispatcher) scan(ctx context.Context) (string, error) {
	if d.scanner == nil {
		return "", fmt.Errorf("scanner not configured")
	}
	if err := d.scanner.RunOnce(ctx); err != nil {
		return "", err
	}
	return "scan cycle complete", nil
}

func (d *StoreDispatcher) watchlist(ctx context.Context) (string, error) {
	results, err := d.st.LatestScanResults(ctx)
	if err != nil {
		return "", err
	}
	var onWatchlist []domain.ScanResult
	for _, r := range results {
		if r.Classification.Rank() >= domain.ClassWatchlist.Rank() {
			onWatchlist = append(onWatchlist, r)
		}
	}
	if len(onWatchlist) == 0 {
		return "no symbols at or above WATCHLIST", nil
	}
	sort.Slice(onWatchlist, func(i, j int) bool { return onWatchlist[i].FinalScore > onWatchlist[j].FinalScore })
	var b strings.Builder
	for _, r := range onWatchlist {
		fmt.Fprintf(&b, "%s %s score=%.1f\n", r.Symbol, r.Classification, r.FinalScore)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

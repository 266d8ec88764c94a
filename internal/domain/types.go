// Package domain holds the value types shared across the scan engine:
// sample series payloads, scan results, and registered trades.
package domain

import "time"

// Quality reflects input sufficiency for a feature, signal, or scan result.
type Quality string

const (
	QualityHigh Quality = "HIGH"
	QualityMed  Quality = "MED"
	QualityLow  Quality = "LOW"
)

// Worse returns the lower of two qualities (HIGH > MED > LOW).
func (q Quality) Worse(other Quality) Quality {
	rank := map[Quality]int{QualityHigh: 2, QualityMed: 1, QualityLow: 0}
	if rank[other] < rank[q] {
		return other
	}
	return q
}

// Classification is the scanner's alert tier, derived from the final score.
type Classification string

const (
	ClassCritical   Classification = "CRITICAL"
	ClassHighAlert  Classification = "HIGH_ALERT"
	ClassWatchlist  Classification = "WATCHLIST"
	ClassMonitor    Classification = "MONITOR"
	ClassNone       Classification = "NONE"
)

// Rank gives a strict ordering for upgrade detection.
func (c Classification) Rank() int {
	switch c {
	case ClassCritical:
		return 4
	case ClassHighAlert:
		return 3
	case ClassWatchlist:
		return 2
	case ClassMonitor:
		return 1
	default:
		return 0
	}
}

// Symbol is an opaque perp-futures symbol present on one or more exchanges.
type Symbol struct {
	Name      string
	Exchanges map[string]bool
}

func NewSymbol(name string) *Symbol {
	return &Symbol{Name: name, Exchanges: make(map[string]bool)}
}

func (s *Symbol) List() []string {
	out := make([]string, 0, len(s.Exchanges))
	for ex, listed := range s.Exchanges {
		if listed {
			out = append(out, ex)
		}
	}
	return out
}

// Candle is an hourly OHLCV bar.
type Candle struct {
	T      int64 `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

// OIPoint is a per-exchange open-interest notional snapshot.
type OIPoint struct {
	T             int64              `json:"t"`
	OIUSDByExchange map[string]float64 `json:"oi_usd_by_exchange"`
}

func (p OIPoint) Total() float64 {
	var sum float64
	for _, v := range p.OIUSDByExchange {
		sum += v
	}
	return sum
}

// FundingPoint is a per-exchange funding-rate snapshot.
type FundingPoint struct {
	T             int64              `json:"t"`
	RateByExchange map[string]float64 `json:"rate_by_exchange"`
}

// LSPoint is a per-exchange long/short account ratio snapshot.
type LSPoint struct {
	T              int64              `json:"t"`
	RatioByExchange map[string]float64 `json:"ratio_by_exchange"`
}

// Ticker is a point-in-time price/volume summary, optionally broken out per exchange.
type Ticker struct {
	T           int64              `json:"t"`
	Price       float64            `json:"price"`
	Vol24h      float64            `json:"vol24"`
	Bid         float64            `json:"bid"`
	Ask         float64            `json:"ask"`
	PerExchange map[string]float64 `json:"per_exchange"`
}

// BookLevel is a single price/size entry in an order book snapshot.
type BookLevel struct {
	Price float64 `json:"price"`
	USD   float64 `json:"usd"`
}

// BookSnapshot is the latest known order book for a symbol, ephemeral (not retained historically).
type BookSnapshot struct {
	T           int64                  `json:"t"`
	Bids        []BookLevel            `json:"bids"`
	Asks        []BookLevel            `json:"asks"`
	PerExchange map[string]BookPerExchange `json:"per_exchange"`
}

type BookPerExchange struct {
	Bids []BookLevel
	Asks []BookLevel
}

// Signal is the output of one of the nine evaluators.
type Signal struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Raw     float64 `json:"raw"`
	Quality Quality `json:"quality"`
}

// Levels are the adaptive smart-levels output, present only for
// classifications of WATCHLIST or above.
type Levels struct {
	Stop       float64  `json:"stop"`
	StopMethod string   `json:"stop_method"`
	StopPct    float64  `json:"stop_pct"`
	EntryLow   float64  `json:"entry_low"`
	EntryHigh  float64  `json:"entry_high"`
	EntryIdeal float64  `json:"entry_ideal"`
	TPs        [4]float64 `json:"tps"`
	TP4Trail   float64  `json:"tp4_trail_pct"`
	RR         float64  `json:"rr"`
	PositionUSD float64 `json:"position_usd"`
}

// Event is a cross-cycle classification/score transition.
type Event string

const (
	EventScoreJump  Event = "SCORE_JUMP"
	EventUpgrade    Event = "UPGRADE"
	EventIgnition   Event = "IGNITION"
	EventTPHit      Event = "TP_HIT"
	EventStopHit    Event = "STOP_HIT"
	EventDegraded   Event = "DEGRADATION"
)

// ScanResult is the persisted outcome of one symbol's scan cycle.
type ScanResult struct {
	Symbol          string         `json:"symbol"`
	T               int64          `json:"t"`
	BaseScore       float64        `json:"base_score"`
	FinalScore      float64        `json:"final_score"`
	Classification  Classification `json:"classification"`
	Signals         [9]Signal      `json:"signals"`
	BonusesApplied  []string       `json:"bonuses_applied"`
	PenaltyApplied  bool           `json:"penalty_applied"`
	Levels          *Levels        `json:"levels,omitempty"`
	Quality         Quality        `json:"quality"`
	Events          []Event        `json:"events"`
}

// TradeState is the lifecycle state of a RegisteredTrade.
type TradeState string

const (
	TradeOpen   TradeState = "OPEN"
	TradeClosed TradeState = "CLOSED"
)

// RegisteredTrade is a user-opened position tracked by the trade monitor.
type RegisteredTrade struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Entry      float64    `json:"entry"`
	SizeUSD    float64    `json:"size_usd"`
	Stop       float64    `json:"stop"`
	TPs        [4]float64 `json:"tps"`
	TPsHit     [4]bool    `json:"tps_hit"`
	State      TradeState `json:"state"`
	OpenedAt   time.Time  `json:"opened_at"`
	TrailStage int        `json:"trail_stage"`
	OpenScore  float64    `json:"open_score"`
	DegradedAt map[int]bool `json:"-"` // threshold crossings already alerted: key 0 = score drop, key 1 = below floor
	HighWater  float64    `json:"high_water"`
}

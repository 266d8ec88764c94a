// Package command defines the operator command surface's message shape
// and parser, plus StoreDispatcher (dispatcher.go), the concrete handler
// that applies parsed commands against the Store and the scan scheduler.
package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies one of the six recognized operator commands.
type Kind string

const (
	KindTrade     Kind = "trade"
	KindClose     Kind = "close"
	KindStatus    Kind = "status"
	KindAdjust    Kind = "adjust"
	KindScan      Kind = "scan"
	KindWatchlist Kind = "watchlist"
)

// AdjustField is the position field an /adjust command targets.
type AdjustField string

const (
	AdjustStop AdjustField = "stop"
	AdjustTP1  AdjustField = "tp1"
	AdjustTP2  AdjustField = "tp2"
	AdjustTP3  AdjustField = "tp3"
)

// Command is a parsed operator command.
type Command struct {
	Kind     Kind
	Symbol   string
	Entry    float64
	SizeUSD  float64
	StopPct  float64
	Field    AdjustField
	Value    float64
}

// Parse turns a raw command line (as received from an Alerter sink's
// return channel) into a Command. Recognized forms:
//
//	/trade S entry size stop_pct
//	/close S
//	/status
//	/adjust S {stop|tp1|tp2|tp3} value
//	/scan
//	/watchlist
func Parse(line string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	verb := strings.TrimPrefix(fields[0], "/")

	switch Kind(verb) {
	case KindTrade:
		if len(fields) != 5 {
			return Command{}, fmt.Errorf("usage: /trade symbol entry size stop_pct")
		}
		entry, err1 := strconv.ParseFloat(fields[2], 64)
		size, err2 := strconv.ParseFloat(fields[3], 64)
		stopPct, err3 := strconv.ParseFloat(fields[4], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return Command{}, fmt.Errorf("invalid numeric argument in /trade")
		}
		return Command{Kind: KindTrade, Symbol: fields[1], Entry: entry, SizeUSD: size, StopPct: stopPct}, nil

	case KindClose:
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("usage: /close symbol")
		}
		return Command{Kind: KindClose, Symbol: fields[1]}, nil

	case KindStatus:
		return Command{Kind: KindStatus}, nil

	case KindAdjust:
		if len(fields) != 4 {
			return Command{}, fmt.Errorf("usage: /adjust symbol {stop|tp1|tp2|tp3} value")
		}
		value, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return Command{}, fmt.Errorf("invalid value in /adjust")
		}
		return Command{Kind: KindAdjust, Symbol: fields[1], Field: AdjustField(fields[2]), Value: value}, nil

	case KindScan:
		return Command{Kind: KindScan}, nil

	case KindWatchlist:
		return Command{Kind: KindWatchlist}, nil

	default:
		return Command{}, fmt.Errorf("unrecognized command: %s", fields[0])
	}
}

// Dispatcher applies a parsed Command against the running scan engine.
// StoreDispatcher in dispatcher.go is the implementation this package
// provides.
type Dispatcher interface {
	Dispatch(c Command) (string, error)
}

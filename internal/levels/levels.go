// Package levels implements the adaptive smart-levels engine: stop
// selection among ATR/swing-low/book-support candidates, classification-
// scaled entry bands, cascade-adjusted take-profits, and position sizing.
// Invoked only for CRITICAL/HIGH_ALERT/WATCHLIST scans.
package levels

import (
	"math"

	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/features"
)

const (
	stopPctMin = 0.025
	stopPctMax = 0.15

	tpCascadeBase    = 3.0
	tpCascadeRatioAt = 3.0
	tpCascadeKMin    = 1.0
	tpCascadeKMax    = 1.8
	tpSnapDiscount   = 0.002
	tpMaxSnapDelta   = 0.15
	tp4TrailATRMult  = 2.0
)

var tpATRMultiples = [3]float64{3.0, 5.5, 9.0}

// Inputs bundles everything the levels engine needs beyond the bundle
// itself: the scan classification and the liq-leverage cascade ratio.
type Inputs struct {
	Classification domain.Classification
	CascadeRatio   float64
	AccountUSD     float64
	RiskPct        float64
}

// Compute builds the full Levels for a symbol. Returns nil if the
// classification doesn't warrant levels (MONITOR/NONE).
func Compute(b features.Bundle, in Inputs) *domain.Levels {
	if in.Classification != domain.ClassCritical && in.Classification != domain.ClassHighAlert && in.Classification != domain.ClassWatchlist {
		return nil
	}
	if !b.ATR.Valid || b.ATR.Value <= 0 || b.PriceNow <= 0 {
		return nil
	}

	stop, method := selectStop(b, in)
	stopPct := (b.PriceNow - stop) / b.PriceNow
	if stopPct < stopPctMin {
		stopPct = stopPctMin
		stop = b.PriceNow * (1 - stopPct)
	}
	if stopPct > stopPctMax {
		stopPct = stopPctMax
		stop = b.PriceNow * (1 - stopPct)
	}

	entryLow, entryHigh, entryIdeal := entryBand(b, in.Classification)

	k := clampF(1+0.1*(in.CascadeRatio-tpCascadeRatioAt), tpCascadeKMin, tpCascadeKMax)
	var tps [4]float64
	for i, m := range tpATRMultiples {
		raw := b.PriceNow + m*k*b.ATR.Value
		tps[i] = snapToResistance(raw, b.PriceNow, b.AskCluster15pc)
	}
	tp4Trail := tp4TrailATRMult * b.ATR.Value / b.PriceNow

	rr := 0.0
	if b.PriceNow > stop {
		rr = (tps[0] - b.PriceNow) / (b.PriceNow - stop)
	}

	riskPct := in.RiskPct
	if riskPct <= 0 {
		riskPct = 0.02
	}
	positionUSD := 0.0
	if stopPct > 0 {
		positionUSD = in.AccountUSD * riskPct / stopPct
	}

	return &domain.Levels{
		Stop:        stop,
		StopMethod:  method,
		StopPct:     stopPct,
		EntryLow:    entryLow,
		EntryHigh:   entryHigh,
		EntryIdeal:  entryIdeal,
		TPs:         tps,
		TP4Trail:    tp4Trail,
		RR:          rr,
		PositionUSD: positionUSD,
	}
}

// selectStop picks the minimum of the three candidate stops among those at
// least 1 ATR below price (e.g. price=1.000, ATR=0.020, candidates
// 0.960/0.950/0.968 -> qualifying 0.960 and 0.950 -> chosen 0.950, swing_low).
func selectStop(b features.Bundle, in Inputs) (float64, string) {
	atrMult := 2.0
	if b.Quality == domain.QualityLow {
		atrMult = 1.5
	} else if in.CascadeRatio >= 5 {
		atrMult = 2.5
	}
	atrStop := b.PriceNow - atrMult*b.ATR.Value

	swingStop := b.SwingLow24h - 0.25*b.ATR.Value

	bookStop := math.Inf(-1)
	if b.BidCluster15pc.LargestClusterUSD > 0 && b.BidCluster15pc.ClusterPrice > 0 {
		median := features.MedianRecentClusterUSD(b.RecentBidClusterUSD)
		if median <= 0 || b.BidCluster15pc.LargestClusterUSD >= 0.5*median {
			bookStop = b.BidCluster15pc.ClusterPrice - 0.1*b.ATR.Value
		}
	}

	type candidate struct {
		price  float64
		method string
	}
	candidates := []candidate{
		{atrStop, "atr"},
		{swingStop, "swing_low"},
	}
	if !math.IsInf(bookStop, -1) {
		candidates = append(candidates, candidate{bookStop, "book_support"})
	}

	minBelow := b.PriceNow - b.ATR.Value
	best := candidate{atrStop, "atr"}
	bestSet := false
	for _, c := range candidates {
		if c.price > minBelow {
			continue
		}
		if !bestSet || c.price < best.price {
			best = c
			bestSet = true
		}
	}
	if !bestSet {
		best = candidate{atrStop, "atr"}
	}
	return best.price, best.method
}

func entryBand(b features.Bundle, class domain.Classification) (low, high, ideal float64) {
	price := b.PriceNow
	switch class {
	case domain.ClassCritical:
		low, high = price*0.998, price*1.004
		ideal = price
	case domain.ClassHighAlert:
		low = math.Max(b.VWAP24h, price*0.985)
		high = price * 0.995
		ideal = (low + high) / 2
	case domain.ClassWatchlist:
		low = b.SwingLow24h
		high = b.SwingLow24h + 0.25*b.ATR.Value
		ideal = low
	}
	return
}

// snapToResistance snaps a raw TP down to 0.2% below the nearest ask
// cluster within reach, never moving the level down by more than 15% of
// its distance from price.
func snapToResistance(raw, price float64, asks features.BookClusterResult) float64 {
	if asks.ClusterPrice <= 0 || asks.ClusterPrice >= raw {
		return raw
	}
	if asks.ClusterPrice <= price {
		return raw
	}
	snapped := asks.ClusterPrice * (1 - tpSnapDiscount)
	maxDrop := tpMaxSnapDelta * (raw - price)
	if raw-snapped > maxDrop {
		return raw - maxDrop
	}
	return snapped
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Package scorer implements the composite scoring algebra: the weighted
// sum over the nine signals, multiplicative interaction bonuses, the
// extension penalty, and classification thresholds.
package scorer

import (
	"github.com/premovescan/premovescan/internal/domain"
	"github.com/premovescan/premovescan/internal/signals"
)

const (
	squeezeBonusMult      = 1.25
	cascadeBonusMult      = 1.30
	accumulationBonusMult = 1.20
	extensionPenaltyMult  = 0.60
	extensionThreshold    = 0.15

	squeezeThreshold      = 45.0
	cascadeThreshold      = 40.0
	accumulationThreshold = 40.0
)

// Signal indices, matching signals.Evaluate's fixed order.
const (
	idxOISurge = iota
	idxFunding
	idxLiqLeverage
	idxCrossExchange
	idxDepth
	idxDecouple
	idxVolCompression
	idxLSRatio
	idxFuturesVolume
)

// Result is the scorer's output before it is folded into a ScanResult.
type Result struct {
	BaseScore      float64
	FinalScore     float64
	BonusesApplied []string
	PenaltyApplied bool
	Classification domain.Classification
}

// Score applies the weighted sum, interaction bonuses, extension penalty,
// and classification thresholds to a completed signal array.
func Score(sig [9]domain.Signal, priceNow, price7dAgo float64) Result {
	base := 0.0
	for i, w := range signals.Weights {
		base += w * sig[i].Score
	}

	final := base
	var bonuses []string

	if sig[idxOISurge].Score >= squeezeThreshold && sig[idxFunding].Score >= squeezeThreshold && sig[idxVolCompression].Score >= squeezeThreshold {
		final *= squeezeBonusMult
		bonuses = append(bonuses, "squeeze_setup")
	}
	if sig[idxLiqLeverage].Score >= cascadeThreshold && sig[idxFunding].Score >= cascadeThreshold && sig[idxLSRatio].Score >= cascadeThreshold {
		final *= cascadeBonusMult
		bonuses = append(bonuses, "cascade_setup")
	}
	if sig[idxOISurge].Score >= accumulationThreshold && sig[idxDecouple].Score >= accumulationThreshold && sig[idxCrossExchange].Score >= accumulationThreshold {
		final *= accumulationBonusMult
		bonuses = append(bonuses, "accumulation_setup")
	}

	penaltyApplied := false
	if price7dAgo > 0 && priceNow/price7dAgo-1 > extensionThreshold {
		final *= extensionPenaltyMult
		penaltyApplied = true
	}

	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	return Result{
		BaseScore:      base,
		FinalScore:     final,
		BonusesApplied: bonuses,
		PenaltyApplied: penaltyApplied,
		Classification: classify(final),
	}
}

func classify(final float64) domain.Classification {
	switch {
	case final >= 78:
		return domain.ClassCritical
	case final >= 62:
		return domain.ClassHighAlert
	case final >= 48:
		return domain.ClassWatchlist
	case final >= 33:
		return domain.ClassMonitor
	default:
		return domain.ClassNone
	}
}

// CascadeRatio is the liq_leverage signal's raw ratio, used downstream by
// the smart-levels engine to widen the ATR stop and scale take-profit
// targets when a liquidation cascade looks likely.
func CascadeRatio(sig [9]domain.Signal) float64 {
	return sig[idxLiqLeverage].Raw
}

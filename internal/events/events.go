// Package events implements the cross-scan event detector: comparing a
// symbol's current ScanResult against its most recent prior one to
// surface SCORE_JUMP, UPGRADE, and IGNITION.
package events

import "github.com/premovescan/premovescan/internal/domain"

const scoreJumpThreshold = 15.0
const ignitionPriceMove = 0.05
const ignitionMinFinal = 48.0

// Detect compares current against prev (nil if this is the symbol's first
// scan) and returns events in the fixed emission order: SCORE_JUMP,
// UPGRADE, IGNITION. priceNow/price6hAgo drive the IGNITION check.
func Detect(current domain.ScanResult, prev *domain.ScanResult, priceNow, price6hAgo float64) []domain.Event {
	var out []domain.Event

	if prev != nil && current.FinalScore-prev.FinalScore >= scoreJumpThreshold {
		out = append(out, domain.EventScoreJump)
	}
	if prev != nil && current.Classification.Rank() > prev.Classification.Rank() {
		out = append(out, domain.EventUpgrade)
	}
	if price6hAgo > 0 {
		priceMove := priceNow/price6hAgo - 1
		if priceMove >= ignitionPriceMove && current.FinalScore >= ignitionMinFinal {
			out = append(out, domain.EventIgnition)
		}
	}

	return out
}

// Package signals implements the nine signal evaluators: pure mappings
// from a features.Bundle to a 0-100 score via piecewise-linear anchor
// curves plus modifiers. Anchor tables are encoded as data, not code
// branches, so a curve can be re-tuned without touching evaluator logic.
package signals

import "math"

// Point is one (raw, score) anchor on a piecewise-linear curve.
type Point struct {
	X, Y float64
}

// Eval interpolates a piecewise-linear curve through anchors (sorted
// ascending by X). Below the first anchor, the curve runs linearly from
// (0,0); above the last anchor, the score holds at the last anchor's Y
// (saturation). The result is clamped to [0,100].
func Eval(raw float64, anchors []Point) float64 {
	if raw <= 0 {
		return 0
	}
	if raw <= anchors[0].X {
		return clamp(anchors[0].Y * (raw / anchors[0].X))
	}
	for i := 0; i < len(anchors)-1; i++ {
		if raw <= anchors[i+1].X {
			frac := (raw - anchors[i].X) / (anchors[i+1].X - anchors[i].X)
			return clamp(anchors[i].Y + frac*(anchors[i+1].Y-anchors[i].Y))
		}
	}
	return clamp(anchors[len(anchors)-1].Y)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

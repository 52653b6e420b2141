package score

import (
	"math"

	"github.com/mgonc/go-poker-metrics/internal/config"
)

// StepParams are the penalty parameters around an ideal, in absolute
// percentage points. Down and up differ because tolerance around an ideal
// is rarely symmetric: over-folding and under-folding are not equal sins.
type StepParams struct {
	StepDownPct       float64
	StepUpPct         float64
	PointsPerStepDown float64
	PointsPerStepUp   float64
}

// Scorer maps an actual percentage against its ideal to a 0..100 score.
type Scorer func(actual, ideal float64, p StepParams) float64

// Clamp bounds a score to [0, 100].
func Clamp(x float64) float64 {
	return math.Max(0, math.Min(100, x))
}

// ScoreStep penalizes whole oscillation steps away from the ideal. Upper
// step boundaries are inclusive: a diff landing exactly on a step edge
// stays in the cheaper step. An actual exactly at the ideal is 100.
func ScoreStep(actual, ideal float64, p StepParams) float64 {
	diff := actual - ideal
	var penalty float64
	switch {
	case diff > 0:
		penalty = stepPenalty(diff, p.StepUpPct, p.PointsPerStepUp)
	case diff < 0:
		penalty = stepPenalty(-diff, p.StepDownPct, p.PointsPerStepDown)
	default:
		return 100.0
	}
	return Clamp(100.0 - penalty)
}

func stepPenalty(diff, step, points float64) float64 {
	mult := diff / math.Max(step, 1e-9)
	steps := math.Floor(mult)
	frac := mult - steps
	if frac < 0.0001 && steps > 0 {
		steps--
	}
	return steps * points
}

// ScoreLinear penalizes proportionally to the distance from the ideal.
func ScoreLinear(actual, ideal float64, p StepParams) float64 {
	diff := actual - ideal
	var penalty float64
	if diff >= 0 {
		penalty = diff / math.Max(p.StepUpPct, 1e-9) * p.PointsPerStepUp
	} else {
		penalty = -diff / math.Max(p.StepDownPct, 1e-9) * p.PointsPerStepDown
	}
	return Clamp(100.0 - penalty)
}

// PickScorer selects the scoring function; anything but linear means step.
func PickScorer(mode string) Scorer {
	if mode == config.ModeLinear {
		return ScoreLinear
	}
	return ScoreStep
}

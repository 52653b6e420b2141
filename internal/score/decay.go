// Package score turns multi-month percentages into a weighted scorecard.
package score

import "github.com/mgonc/go-poker-metrics/internal/model"

// Pair is a per-month sample: the value and whether the month is usable.
// Samples are ordered newest month first.
type Pair struct {
	Value  float64
	Usable bool
}

// WeightsForN returns the decay profile matching the number of available
// months, sliced to n. More than three months never get extra weight; the
// fourth and older months are not collected in the first place.
func WeightsForN(n int, td model.TimeDecay) []float64 {
	switch {
	case n >= 3:
		return td.Weights3[:3]
	case n == 2:
		return td.Weights2[:2]
	case n == 1:
		return td.Weights1[:1]
	}
	return nil
}

// ApplyTimeDecay computes the weighted mean of the usable pairs. Pairs and
// weights align by index before anything is dropped; dropping first would
// shift every later weight onto the wrong month. No usable mass yields 0.
func ApplyTimeDecay(pairs []Pair, weights []float64) float64 {
	n := len(pairs)
	if len(weights) < n {
		n = len(weights)
	}
	var sum, mass float64
	for i := 0; i < n; i++ {
		if !pairs[i].Usable {
			continue
		}
		sum += pairs[i].Value * weights[i]
		mass += weights[i]
	}
	if mass == 0 {
		return 0.0
	}
	return sum / mass
}

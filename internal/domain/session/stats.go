// Package session aggregates per-rep scores into workout statistics and the
// end-of-session report.
package session

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Weights combine average, best and consistency into the overall score.
type Weights struct {
	Average     float64
	Best        float64
	Consistency float64 // applied to consistency in [0,1]
}

// DefaultWeights returns 0.7 average, 0.2 best and 10 points of consistency.
func DefaultWeights() Weights {
	return Weights{Average: 0.7, Best: 0.2, Consistency: 10}
}

// Stats summarizes a list of rep scores.
type Stats struct {
	AverageScore float64 `json:"average_score"`
	BestRepScore float64 `json:"best_rep_score"`
	Consistency  float64 `json:"consistency"`
	OverallScore int     `json:"overall_score"`
}

func valid(score float64) bool {
	return !math.IsNaN(score) && !math.IsInf(score, 0) && score >= 0
}

// CalculateStats uses the default weights.
func CalculateStats(scores []float64) Stats {
	return DefaultWeights().Calculate(scores)
}

// Calculate ignores NaN, infinite and negative scores. With no valid score
// every figure is zero and consistency is 1.
func (w Weights) Calculate(scores []float64) Stats {
	vs := make([]float64, 0, len(scores))
	for _, s := range scores {
		if valid(s) {
			vs = append(vs, s)
		}
	}
	if len(vs) == 0 {
		return Stats{Consistency: 1}
	}
	avg := stat.Mean(vs, nil)
	best := floats.Max(vs)
	cons := 1 - (best-floats.Min(vs))/100
	overall := math.Round(avg*w.Average + best*w.Best + cons*w.Consistency)
	return Stats{
		AverageScore: avg,
		BestRepScore: best,
		Consistency:  cons,
		OverallScore: int(math.Max(0, math.Min(100, overall))),
	}
}

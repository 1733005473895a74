package session

import (
	"math"
	"time"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/model"
)

// Aggregator collects rep scores for one session.
type Aggregator struct {
	weights Weights
	scores  []float64
}

// NewAggregator returns an empty aggregator using w.
func NewAggregator(w Weights) *Aggregator {
	return &Aggregator{weights: w}
}

// Add records a rep score; invalid scores are dropped.
func (a *Aggregator) Add(score float64) {
	if valid(score) {
		a.scores = append(a.scores, score)
	}
}

// Scores returns a copy of the recorded scores.
func (a *Aggregator) Scores() []float64 {
	return append([]float64(nil), a.scores...)
}

// Count is the number of recorded scores.
func (a *Aggregator) Count() int { return len(a.scores) }

// Stats computes statistics over the recorded scores.
func (a *Aggregator) Stats() Stats { return a.weights.Calculate(a.scores) }

// Reset drops every recorded score.
func (a *Aggregator) Reset() { a.scores = a.scores[:0] }

// Summary is what the workout knows when it stops.
type Summary struct {
	SessionID string
	Profile   exercise.Profile
	Count     int // reps, or the longest hold in seconds
	StartedAt time.Time
	EndedAt   time.Time
}

// Report builds the session report. It does not change the aggregator.
func (a *Aggregator) Report(s Summary) model.SessionReport {
	st := a.Stats()
	r := model.SessionReport{
		SessionID:       s.SessionID,
		Exercise:        s.Profile.ID,
		ExerciseName:    s.Profile.Name,
		ExerciseType:    string(s.Profile.Type),
		DurationSeconds: int(s.EndedAt.Sub(s.StartedAt).Seconds()),
		RepScores:       make([]int, len(a.scores)),
		AverageScore:    math.Round(st.AverageScore*100) / 100,
		BestRepScore:    st.BestRepScore,
		Consistency:     st.Consistency,
		OverallScore:    st.OverallScore,
		Feedback:        Feedback(s.Profile, st),
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
	}
	for i, v := range a.scores {
		r.RepScores[i] = int(math.Round(v))
	}
	if s.Profile.Timed() {
		r.DurationSeconds = s.Count
	} else {
		r.TotalReps = s.Count
	}
	return r
}

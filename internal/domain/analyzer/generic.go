package analyzer

import (
	"math"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/ringbuf"
)

const (
	genericBase      = 80
	genericPenalty   = 10
	genericKneeDiff  = 20.0
	genericElbowDiff = 25.0
	hingeHistory     = 10
	hingeAbove       = 140.0

	msgGeneric = "Exercise detected - maintain good form"
)

type generic struct{}

// NewGeneric builds the fallback analyzer used for exercises without a
// dedicated one. Its signal is the hip angle with knee and elbow as extra
// channels.
func NewGeneric(_ exercise.Profile, _ Config) Analyzer { return generic{} }

func (generic) Reset() {}

func (generic) Analyze(in Input) Assessment {
	a := in.Angles
	hip, hok := a.Hip()
	knee, kok := a.Knee()
	elbow, eok := a.Elbow()
	if !hok && !kok && !eok {
		return invalid()
	}
	score := genericBase
	fb := []string{msgGeneric}
	if d, ok := model.Diff(a.LeftKnee, a.RightKnee); ok && d > genericKneeDiff {
		score -= genericPenalty
		fb = append(fb, "Keep both sides balanced")
	}
	if d, ok := model.Diff(a.LeftElbow, a.RightElbow); ok && d > genericElbowDiff {
		score -= genericPenalty
		fb = append(fb, "Keep arm movements synchronized")
	}
	return Assessment{
		Signal: Signal{
			Value:    valueOr(hip, hok),
			Channels: []float64{valueOr(knee, kok), valueOr(elbow, eok)},
			Valid:    true,
		},
		Score:    score,
		Metrics:  map[string]float64{"base": genericBase},
		Feedback: fb,
	}
}

// deadlift is the generic analyzer plus a hip-hinge check over the last
// few frames.
type deadlift struct {
	generic
	hips *ringbuf.Ring[float64]
}

// NewDeadlift builds the deadlift analyzer.
func NewDeadlift(_ exercise.Profile, _ Config) Analyzer {
	return &deadlift{hips: ringbuf.New[float64](hingeHistory)}
}

func (d *deadlift) Reset() { d.hips.Reset() }

func (d *deadlift) Analyze(in Input) Assessment {
	out := d.generic.Analyze(in)
	if !out.Signal.Valid {
		return out
	}
	if math.IsNaN(out.Signal.Value) {
		out.Signal.Valid = false
		return out
	}
	d.hips.Push(out.Signal.Value)
	deepest := math.Inf(1)
	for _, v := range d.hips.Values() {
		deepest = math.Min(deepest, v)
	}
	hinge := 100.0
	if deepest > hingeAbove {
		hinge = 50
		out.Score -= genericPenalty
		out.Feedback = append(out.Feedback, "Hinge more at the hips")
	}
	out.Metrics["hip_hinge"] = hinge
	out.Metrics["deepest_hip"] = deepest
	return out
}

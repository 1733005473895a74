package analyzer

import (
	"math"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/geometry"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/ringbuf"
)

const (
	shoulderHistory   = 15
	smoothnessHistory = 10
	smoothnessScale   = 3
	minShoulderScore  = 70
)

type curl struct {
	minFlexion float64
	minControl float64
	shoulders  *ringbuf.Ring[model.Keypoint]
	smoothness motion
}

// NewCurl builds the bicep curl analyzer.
func NewCurl(p exercise.Profile, _ Config) Analyzer {
	return &curl{
		minFlexion: p.Criterion("minElbowFlexion", 45),
		minControl: p.Criterion("minControlledMovement", 70),
		shoulders:  ringbuf.New[model.Keypoint](shoulderHistory),
		smoothness: newMotion(smoothnessHistory, smoothnessScale),
	}
}

func (c *curl) Reset() {
	c.shoulders.Reset()
	c.smoothness.reset()
}

func (c *curl) Analyze(in Input) Assessment {
	elbow, ok := in.Angles.Elbow()
	if !ok {
		return invalid()
	}
	if s, ok := geometry.Mid(in.Frame, model.LeftShoulder, model.RightShoulder); ok {
		c.shoulders.Push(s)
	}
	stability := drift(c.shoulders)
	c.smoothness.add(elbow)
	smooth := c.smoothness.score()

	var fb []string
	if stability < minShoulderScore {
		fb = append(fb, "Keep your shoulders still")
	}
	if smooth < c.minControl {
		fb = append(fb, "Control the movement - avoid swinging")
	}
	if elbow < c.minFlexion {
		fb = append(fb, "Avoid over-curling at the top")
	}
	return Assessment{
		Signal:   Signal{Value: elbow, Valid: true},
		Score:    clampScore(meanScore(stability, smooth)),
		Metrics:  map[string]float64{"shoulder_stability": stability, "smoothness": smooth},
		Feedback: orDefault(fb, "Good curl form!"),
	}
}

// drift is 100 minus 1000 times the mean distance of the ring's points
// from their own mean.
func drift(r *ringbuf.Ring[model.Keypoint]) float64 {
	n := r.Len()
	if n == 0 {
		return 100
	}
	var mean model.Keypoint
	for i := range n {
		p := r.At(i)
		mean.X += p.X / float64(n)
		mean.Y += p.Y / float64(n)
	}
	var sum float64
	for i := range n {
		sum += geometry.Distance(r.At(i), mean)
	}
	return math.Max(0, 100-1000*sum/float64(n))
}

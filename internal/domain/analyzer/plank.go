package analyzer

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/geometry"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/ringbuf"
)

const (
	centroidHistory  = 30
	plankMaxOffset   = 0.15
	plankMinShoulder = 0.3
)

type plank struct {
	centroids *ringbuf.Ring[model.Keypoint]
	started   time.Time
}

// NewPlank builds the plank hold analyzer.
func NewPlank(_ exercise.Profile, _ Config) Analyzer {
	return &plank{centroids: ringbuf.New[model.Keypoint](centroidHistory)}
}

func (p *plank) Reset() {
	p.centroids.Reset()
	p.started = time.Time{}
}

func (p *plank) Analyze(in Input) Assessment {
	// a dropped or partial frame keeps the hold running
	if !in.Frame.Complete() {
		return invalid()
	}
	s, ok1 := geometry.Mid(in.Frame, model.LeftShoulder, model.RightShoulder)
	h, ok2 := geometry.Mid(in.Frame, model.LeftHip, model.RightHip)
	a, ok3 := geometry.Mid(in.Frame, model.LeftAnkle, model.RightAnkle)
	if !ok1 || !ok2 || !ok3 {
		return invalid()
	}
	upper, lower := math.Abs(s.Y-h.Y), math.Abs(h.Y-a.Y)
	if upper >= plankMaxOffset || lower >= plankMaxOffset || s.Y <= plankMinShoulder {
		p.Reset()
		return Assessment{
			Signal:   Signal{Valid: true},
			Metrics:  map[string]float64{"stability": 0, "alignment": 0, "hold_seconds": 0},
			Feedback: []string{"Get into plank position"},
		}
	}

	if p.started.IsZero() {
		p.started = in.At
	}
	hold := in.At.Sub(p.started)
	p.centroids.Push(model.Keypoint{X: (s.X + h.X + a.X) / 3, Y: (s.Y + h.Y + a.Y) / 3})
	stability := p.stability()
	alignment := math.Max(0, 100-500*(upper+lower))
	secs := int(hold.Seconds())

	var fb []string
	switch {
	case stability < 50:
		fb = append(fb, "Keep your body still and stable")
	case stability > 80:
		fb = append(fb, "Great stability!")
	}
	switch {
	case alignment < 60:
		fb = append(fb, "Keep your body in a straight line")
	case alignment > 80:
		fb = append(fb, "Perfect body alignment!")
	}
	switch {
	case secs > 30:
		fb = append(fb, fmt.Sprintf("Amazing! %d seconds!", secs))
	case secs > 15:
		fb = append(fb, fmt.Sprintf("Great job! %d seconds", secs))
	}

	return Assessment{
		Signal: Signal{Value: hold.Seconds(), Valid: true},
		Score:  clampScore(alignment),
		Metrics: map[string]float64{
			"stability":    stability,
			"alignment":    alignment,
			"hold_seconds": hold.Seconds(),
		},
		Feedback: orDefault(fb, "Hold the plank position"),
		Holding:  true,
		HoldTime: hold,
	}
}

// stability penalises the mean frame-to-frame centroid displacement.
func (p *plank) stability() float64 {
	n := p.centroids.Len()
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < n; i++ {
		sum += geometry.Distance(p.centroids.At(i), p.centroids.At(i-1))
	}
	return math.Max(0, 100-1000*sum/float64(n-1))
}

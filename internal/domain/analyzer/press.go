package analyzer

import (
	"math"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/geometry"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/smoothing"
)

type press struct {
	maxWrist   float64
	minCore    float64
	maxArch    float64
	left       *smoothing.MovingAverage
	right      *smoothing.MovingAverage
	smoothness motion
}

// NewPress builds the shoulder press analyzer. Shoulder angles are not in
// the shared angle set, so it smooths its own.
func NewPress(p exercise.Profile, _ Config) Analyzer {
	return &press{
		maxWrist:   p.Criterion("maxWristDeviation", 0.08),
		minCore:    p.Criterion("minCoreStability", 70),
		maxArch:    p.Criterion("maxBackArch", 0.1),
		left:       smoothing.NewMovingAverage(smoothing.DefaultWindow),
		right:      smoothing.NewMovingAverage(smoothing.DefaultWindow),
		smoothness: newMotion(smoothnessHistory, smoothnessScale),
	}
}

func (p *press) Reset() {
	p.left.Reset()
	p.right.Reset()
	p.smoothness.reset()
}

func shoulderAngle(f model.Frame, hip, shoulder, elbow model.Landmark) model.Angle {
	pts, ok := f.Points(hip, shoulder, elbow)
	if !ok {
		return model.NoAngle
	}
	deg, ok := geometry.Angle(geometry.Vec(pts[0], false), geometry.Vec(pts[1], false), geometry.Vec(pts[2], false))
	if !ok {
		return model.NoAngle
	}
	return model.Degrees(deg)
}

func (p *press) Analyze(in Input) Assessment {
	l := p.left.Add(shoulderAngle(in.Frame, model.LeftHip, model.LeftShoulder, model.LeftElbow))
	r := p.right.Add(shoulderAngle(in.Frame, model.RightHip, model.RightShoulder, model.RightElbow))
	angle, ok := model.Pair(l, r)
	if !ok {
		return invalid()
	}
	p.smoothness.add(angle)
	smooth := p.smoothness.score()

	var fb []string
	stacked := true
	for _, side := range [2][2]model.Landmark{{model.LeftWrist, model.LeftElbow}, {model.RightWrist, model.RightElbow}} {
		if pts, ok := in.Frame.Points(side[0], side[1]); ok && math.Abs(pts[0].X-pts[1].X) > p.maxWrist {
			stacked = false
		}
	}
	if !stacked {
		fb = append(fb, "Stack wrists over elbows")
	}

	core := 100.0
	s, ok1 := geometry.Mid(in.Frame, model.LeftShoulder, model.RightShoulder)
	h, ok2 := geometry.Mid(in.Frame, model.LeftHip, model.RightHip)
	if ok1 && ok2 {
		offset := math.Abs(s.X - h.X)
		core = math.Max(0, 100-500*offset)
		if offset > p.maxArch {
			fb = append(fb, "Avoid arching your back")
		}
	}
	if core < p.minCore {
		fb = append(fb, "Brace your core")
	}
	wrist := passScore(stacked, 60)

	return Assessment{
		Signal: Signal{Value: angle, Valid: true},
		Score:  clampScore(meanScore(wrist, core, smooth)),
		Metrics: map[string]float64{
			"shoulder_angle": angle,
			"wrist_stacking": wrist,
			"core_stability": core,
			"smoothness":     smooth,
		},
		Feedback: orDefault(fb, "Good press form!"),
	}
}

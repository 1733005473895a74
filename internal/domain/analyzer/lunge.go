package analyzer

import (
	"math"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/geometry"
	"github.com/okian/formcoach/internal/domain/model"
)

const (
	stanceMinSpread = 0.15
	stanceMinDrop   = 0.05
	lungeMaxBack    = 100.0
)

type lunge struct {
	frontMin, frontMax float64
	backMin            float64
	maxKneeOverToe     float64
}

// NewLunge builds the lunge analyzer. It works on raw keypoints only.
func NewLunge(p exercise.Profile, _ Config) Analyzer {
	return &lunge{
		frontMin:       p.Criterion("minFrontKneeAngle", 80),
		frontMax:       p.Criterion("maxFrontKneeAngle", 100),
		backMin:        p.Criterion("minBackKneeAngle", 80),
		maxKneeOverToe: p.Criterion("maxKneeOverToe", 0.05),
	}
}

func (l *lunge) Reset() {}

// bandScore is 100 inside [lo, hi] and loses two points per degree outside.
func bandScore(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return math.Max(0, 100-2*(lo-v))
	case v > hi:
		return math.Max(0, 100-2*(v-hi))
	}
	return 100
}

func (l *lunge) Analyze(in Input) Assessment {
	pts, ok := in.Frame.Points(model.LeftHip, model.LeftKnee, model.LeftAnkle, model.RightHip, model.RightKnee, model.RightAnkle)
	if !ok {
		return invalid()
	}
	left, right := pts[:3], pts[3:]
	front, back := left, right
	if right[2].X < left[2].X {
		front, back = right, left
	}
	hip := geometry.Midpoint(left[0], right[0])

	split := math.Abs(left[2].X-right[2].X) > stanceMinSpread && math.Abs(left[1].Y-right[1].Y) > stanceMinDrop

	frontAngle, _ := geometry.Angle(geometry.Vec(front[0], false), geometry.Vec(front[1], false), geometry.Vec(front[2], false))
	backAngle, _ := geometry.Angle(geometry.Vec(back[0], false), geometry.Vec(back[1], false), geometry.Vec(back[2], false))
	frontScore := bandScore(float64(frontAngle), l.frontMin, l.frontMax)
	backScore := bandScore(float64(backAngle), l.backMin, lungeMaxBack)

	balance := 100.0
	if nose, ok := in.Frame.Point(model.Nose); ok {
		balance = math.Max(0, 100-500*math.Abs(nose.X-hip.X))
	}
	depth := math.Max(0, math.Min(100, 100-400*(front[1].Y-hip.Y)))
	overToe := math.Abs(front[1].X-front[2].X) > l.maxKneeOverToe
	toe := passScore(!overToe, 60)

	var fb []string
	if !split {
		fb = append(fb, "Step into a lunge position")
	} else {
		if frontScore < 80 {
			fb = append(fb, "Bend front knee to 90 degrees")
		}
		if backScore < 80 {
			fb = append(fb, "Lower back knee toward the floor")
		}
	}
	if balance < 70 {
		fb = append(fb, "Keep torso upright and centered")
	}
	if overToe {
		fb = append(fb, "Keep front knee behind toes")
	}

	signal := 0.0
	if split {
		signal = depth
	}
	return Assessment{
		Signal: Signal{Value: signal, Valid: true},
		Score:  clampScore(meanScore(frontScore, backScore, balance, depth, toe)),
		Metrics: map[string]float64{
			"front_knee":    frontScore,
			"back_knee":     backScore,
			"balance":       balance,
			"depth":         depth,
			"knee_over_toe": toe,
		},
		Feedback: orDefault(fb, "Great lunge form!"),
	}
}

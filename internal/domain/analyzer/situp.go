package analyzer

import (
	"math"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/geometry"
	"github.com/okian/formcoach/internal/domain/model"
)

const sittingUpBelow = 90.0

type situp struct {
	maxNeckStrain float64
	minControl    float64
	smoothness    motion
}

// NewSitup builds the sit-up analyzer.
func NewSitup(p exercise.Profile, _ Config) Analyzer {
	return &situp{
		maxNeckStrain: p.Criterion("maxNeckStrain", 0.05),
		minControl:    p.Criterion("minControlledMovement", 70),
		smoothness:    newMotion(smoothnessHistory, smoothnessScale),
	}
}

func (s *situp) Reset() { s.smoothness.reset() }

func (s *situp) Analyze(in Input) Assessment {
	torso, ok := in.Angles.Hip()
	if !ok {
		return invalid()
	}
	s.smoothness.add(torso)
	smooth := s.smoothness.score()

	var fb []string
	neck := 100.0
	nose, ok1 := in.Frame.Point(model.Nose)
	sh, ok2 := geometry.Mid(in.Frame, model.LeftShoulder, model.RightShoulder)
	if ok1 && ok2 {
		clearance := geometry.Distance(nose, sh)
		neck = math.Min(100, 1000*clearance)
		if clearance < s.maxNeckStrain {
			fb = append(fb, "Don't pull on your neck")
		}
	}
	if smooth < s.minControl {
		fb = append(fb, "Lower back down slowly")
	}
	up := 0.0
	if torso < sittingUpBelow {
		up = 1
	}
	return Assessment{
		Signal: Signal{Value: torso, Valid: true},
		Score:  clampScore(meanScore(neck, smooth)),
		Metrics: map[string]float64{
			"torso_angle": torso,
			"sitting_up":  up,
			"neck":        neck,
			"smoothness":  smooth,
		},
		Feedback: orDefault(fb, "Good sit-up form!"),
	}
}

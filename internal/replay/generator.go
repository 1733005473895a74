package replay

import (
	"fmt"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/synth"
)

const (
	sweepStep = 10.0
	// frames held at each end of a cycle so smoothing settles
	dwellFrames = 4
	// frames per held second for timed exercises
	holdFramesPerSecond = 10
)

type motion struct {
	from, to float64
	pose     func(float64) model.Frame
}

var motions = map[string]motion{
	exercise.Squats:        {170, 70, synth.Squat},
	exercise.Pushups:       {170, 80, synth.Pushup},
	exercise.BicepCurls:    {160, 40, synth.Curl},
	exercise.ShoulderPress: {80, 170, synth.Press},
	exercise.Situps:        {130, 45, synth.Situp},
	exercise.Deadlifts:     {170, 90, synth.Hinge},
	exercise.Lunges:        {0, 1, synth.Lunge},
}

// Supported lists the exercises a workout can be generated for.
func Supported() []string {
	ids := make([]string, 0, len(motions)+1)
	for id := range motions {
		ids = append(ids, id)
	}
	return append(ids, exercise.Plank)
}

// Workout builds the frames for reps repetitions of an exercise. For the
// plank, reps is the number of seconds to hold at holdFramesPerSecond; the
// hold time credited by the service still follows its own clock.
func Workout(exerciseID string, reps int) ([]model.Frame, error) {
	if reps < 0 {
		reps = 0
	}
	if exerciseID == exercise.Plank {
		frames := make([]model.Frame, 0, reps*holdFramesPerSecond)
		for range reps * holdFramesPerSecond {
			frames = append(frames, synth.Plank())
		}
		return frames, nil
	}
	m, ok := motions[exerciseID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExercise, exerciseID)
	}

	frames := dwell(nil, m.pose(m.from))
	for range reps {
		frames = append(frames, sweep(m, m.from, m.to)...)
		frames = dwell(frames, m.pose(m.to))
		frames = append(frames, sweep(m, m.to, m.from)...)
		frames = dwell(frames, m.pose(m.from))
	}
	return frames, nil
}

func dwell(frames []model.Frame, f model.Frame) []model.Frame {
	for range dwellFrames {
		frames = append(frames, f)
	}
	return frames
}

// sweep interpolates between two signal values, excluding both ends.
func sweep(m motion, from, to float64) []model.Frame {
	span := to - from
	if span < 0 {
		span = -span
	}
	step := sweepStep
	if span <= 1 {
		// lunge depth is a 0..1 ratio
		step = 0.1
	}
	n := int(span / step)
	out := make([]model.Frame, 0, n)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		out = append(out, m.pose(from+(to-from)*t))
	}
	return out
}

package analyzer

import (
	"math"
	"time"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/ringbuf"
)

const (
	depthHistory   = 10
	tempoSpan      = 3 * time.Second
	tempoMin       = 10
	tempoCapacity  = 256
	tempoTooFast   = 60.0
	tempoTooSlow   = 15.0
	kneeOverAnkle  = 0.05
	squatCueBelow  = 110.0
	pushupCueBelow = 120.0
)

// Depth buckets shared by squat knee depth and push-up elbow range.
type depthBucket int

const (
	bucketDeep depthBucket = iota
	bucketGood
	bucketModerate
	bucketShallow
)

var bucketScore = [...]float64{100, 85, 65, 40}

func bucketOf(v float64, edges [3]float64) depthBucket {
	for i, e := range edges {
		if v < e {
			return depthBucket(i)
		}
	}
	return bucketShallow
}

var squatEdges = [3]float64{70, 90, 110}

type squat struct {
	cfg     Config
	maxKnee float64
	maxHip  float64
	depths  *ringbuf.Ring[float64]
	tempo   window
}

// NewSquat builds the squat analyzer.
func NewSquat(p exercise.Profile, cfg Config) Analyzer {
	return &squat{
		cfg:     cfg,
		maxKnee: p.Criterion("maxKneeDifference", 15),
		maxHip:  p.Criterion("maxHipDifference", 15),
		depths:  ringbuf.New[float64](depthHistory),
		tempo:   newWindow(tempoCapacity, tempoSpan),
	}
}

func (s *squat) Reset() {
	s.depths.Reset()
	s.tempo.reset()
}

func (s *squat) Analyze(in Input) Assessment {
	knee, ok := in.Angles.Knee()
	if !ok {
		return invalid()
	}
	rule := s.cfg.Scorer.Squat(in.Frame, in.Angles)

	s.depths.Push(knee)
	bucket := bucketOf(knee, squatEdges)
	consistency := boundedVariance(s.depths)

	tracking := kneesOverAnkles(in.Frame)

	s.tempo.add(in.At, knee)
	speed, known := s.tempo.rate(tempoMin)
	tempoScore := 100.0
	var notes []string
	if !tracking {
		notes = append(notes, "Keep knees aligned over toes")
	}
	if known {
		switch {
		case speed > tempoTooFast:
			tempoScore = 60
			notes = append(notes, "Slow down - control the movement")
		case speed < tempoTooSlow:
			tempoScore = 80
			notes = append(notes, "Move with more purpose")
		}
	}
	symmetric := s.symmetric(in.Angles)
	if !symmetric {
		notes = append(notes, "Keep both sides even")
	}

	metrics := map[string]float64{
		"depth":             bucketScore[bucket],
		"depth_consistency": consistency,
		"knee_tracking":     passScore(tracking, 50),
		"tempo":             tempoScore,
		"symmetry":          passScore(symmetric, 60),
	}
	if known {
		metrics["tempo_deg_per_sec"] = speed
	}

	var cue []string
	if knee < squatCueBelow {
		cue = []string{[...]string{"Perfect depth!", "Good depth!", "Go deeper for better results", ""}[bucket]}
	}
	return Assessment{
		Signal:   Signal{Value: knee, Valid: true},
		Score:    blend(rule.Score, s.cfg.ScorerWeight, metrics["depth"], consistency, metrics["knee_tracking"], tempoScore, metrics["symmetry"]),
		Metrics:  metrics,
		Feedback: merge(cue, rule.Feedback, notes),
	}
}

func (s *squat) symmetric(a model.JointAngles) bool {
	if d, ok := model.Diff(a.LeftKnee, a.RightKnee); ok && d >= s.maxKnee {
		return false
	}
	if d, ok := model.Diff(a.LeftHip, a.RightHip); ok && d >= s.maxHip {
		return false
	}
	return true
}

// kneesOverAnkles checks each visible leg keeps the knee within a small
// horizontal distance of the ankle.
func kneesOverAnkles(f model.Frame) bool {
	for _, side := range [2][2]model.Landmark{{model.LeftKnee, model.LeftAnkle}, {model.RightKnee, model.RightAnkle}} {
		pts, ok := f.Points(side[0], side[1])
		if ok && math.Abs(pts[0].X-pts[1].X) >= kneeOverAnkle {
			return false
		}
	}
	return true
}

func passScore(ok bool, fail float64) float64 {
	if ok {
		return 100
	}
	return fail
}

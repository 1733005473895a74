package analyzer

import (
	"math"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/geometry"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/ringbuf"
)

const (
	plankTolerance = 0.1
	sagThreshold   = 0.05
	flareRatio     = 1.3
	minShoulderGap = 1e-3
	handsPerfect   = 0.05
	handsGood      = 0.1
)

var pushupEdges = [3]float64{70, 90, 120}

// bodyShape classifies the torso line during a push-up.
type bodyShape string

const (
	shapePlank   bodyShape = "plank"
	shapeSagging bodyShape = "sagging"
	shapePiking  bodyShape = "piking"
)

var shapeScore = map[bodyShape]float64{shapePlank: 100, shapeSagging: 50, shapePiking: 60}

type pushup struct {
	cfg    Config
	ranges *ringbuf.Ring[float64]
}

// NewPushup builds the push-up analyzer.
func NewPushup(_ exercise.Profile, cfg Config) Analyzer {
	return &pushup{cfg: cfg, ranges: ringbuf.New[float64](depthHistory)}
}

func (p *pushup) Reset() { p.ranges.Reset() }

func (p *pushup) Analyze(in Input) Assessment {
	elbow, ok := in.Angles.Elbow()
	if !ok {
		return invalid()
	}
	rule := p.cfg.Scorer.Pushup(in.Frame, in.Angles)

	p.ranges.Push(elbow)
	bucket := bucketOf(elbow, pushupEdges)
	consistency := boundedVariance(p.ranges)

	metrics := map[string]float64{
		"range":             bucketScore[bucket],
		"range_consistency": consistency,
	}
	var notes []string

	body := 100.0
	if shape, ok := bodyLine(in.Frame); ok {
		body = shapeScore[shape]
		switch shape {
		case shapeSagging:
			notes = append(notes, "Engage core - prevent sagging")
		case shapePiking:
			notes = append(notes, "Lower hips - maintain straight line")
		}
	}
	metrics["body_alignment"] = body

	flare := 100.0
	if ratio, ok := elbowFlare(in.Frame); ok {
		metrics["elbow_flare_ratio"] = ratio
		if ratio > flareRatio {
			flare = 60
			notes = append(notes, "Keep elbows closer to body")
		}
	}
	metrics["elbow_position"] = flare

	hands := 100.0
	if off, ok := handOffset(in.Frame); ok {
		switch {
		case off < handsPerfect:
		case off < handsGood:
			hands = 80
		default:
			hands = 50
			notes = append(notes, "Adjust hand position under shoulders")
		}
	}
	metrics["hand_placement"] = hands

	var cue []string
	if elbow < pushupCueBelow {
		cue = []string{[...]string{"Perfect depth!", "Good depth!", "Go lower for full range", ""}[bucket]}
	}
	return Assessment{
		Signal:   Signal{Value: elbow, Valid: true},
		Score:    blend(rule.Score, p.cfg.ScorerWeight, metrics["range"], consistency, body, flare, hands),
		Metrics:  metrics,
		Feedback: merge(cue, rule.Feedback, notes),
	}
}

// bodyLine compares hip height against the shoulders and knees.
func bodyLine(f model.Frame) (bodyShape, bool) {
	s, ok1 := geometry.Mid(f, model.LeftShoulder, model.RightShoulder)
	h, ok2 := geometry.Mid(f, model.LeftHip, model.RightHip)
	k, ok3 := geometry.Mid(f, model.LeftKnee, model.RightKnee)
	if !ok1 || !ok2 || !ok3 {
		return "", false
	}
	hipSag := h.Y - s.Y
	kneeSag := k.Y - h.Y
	switch {
	case math.Abs(hipSag) < plankTolerance && math.Abs(kneeSag) < plankTolerance:
		return shapePlank, true
	case hipSag > sagThreshold:
		return shapeSagging, true
	default:
		return shapePiking, true
	}
}

func elbowFlare(f model.Frame) (float64, bool) {
	pts, ok := f.Points(model.LeftShoulder, model.RightShoulder, model.LeftElbow, model.RightElbow)
	if !ok {
		return 0, false
	}
	shoulders := math.Abs(pts[0].X - pts[1].X)
	if shoulders < minShoulderGap {
		return 0, false
	}
	return math.Abs(pts[2].X-pts[3].X) / shoulders, true
}

// handOffset is the mean horizontal wrist-to-shoulder distance over the
// visible sides.
func handOffset(f model.Frame) (float64, bool) {
	var sum float64
	var n int
	for _, side := range [2][2]model.Landmark{{model.LeftWrist, model.LeftShoulder}, {model.RightWrist, model.RightShoulder}} {
		if pts, ok := f.Points(side[0], side[1]); ok {
			sum += math.Abs(pts[0].X - pts[1].X)
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

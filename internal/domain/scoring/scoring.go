// Package scoring implements the deduction-based form scorer for squats and
// push-ups: start at 100 and subtract a fixed penalty per violated rule.
package scoring

import (
	"math"

	"github.com/okian/formcoach/internal/domain/geometry"
	"github.com/okian/formcoach/internal/domain/model"
)

const (
	maxScore = 100

	// MsgNoPose is returned when the primary angles are missing.
	MsgNoPose = "Cannot detect pose"
)

// Result is a 0-100 score with the messages for every violated rule.
type Result struct {
	Score    int
	Feedback []string
}

// SquatRules are the squat thresholds and penalties.
type SquatRules struct {
	MaxKneeDiff     float64
	SymmetryPenalty int
	MaxKnee         float64 // average knee angle above this is too shallow
	DepthPenalty    int
	MaxHip          float64
	HipPenalty      int
	TrackingMargin  float64 // slack around the hip-ankle horizontal span
	TrackingPenalty int
	MaxLean         float64 // torso lean from vertical, degrees
	PosturePenalty  int
}

// PushupRules are the push-up thresholds and penalties.
type PushupRules struct {
	MaxElbowDiff     float64
	SymmetryPenalty  int
	MaxElbow         float64
	RangePenalty     int
	MinBodyLine      float64 // nose-hip-ankle angle
	AlignmentPenalty int
}

// DefaultSquatRules returns the stock squat rules.
func DefaultSquatRules() SquatRules {
	return SquatRules{
		MaxKneeDiff: 15, SymmetryPenalty: 20,
		MaxKnee: 110, DepthPenalty: 15,
		MaxHip: 140, HipPenalty: 10,
		TrackingMargin: 0.03, TrackingPenalty: 25,
		MaxLean: 55, PosturePenalty: 15,
	}
}

// DefaultPushupRules returns the stock push-up rules.
func DefaultPushupRules() PushupRules {
	return PushupRules{
		MaxElbowDiff: 20, SymmetryPenalty: 20,
		MaxElbow: 120, RangePenalty: 15,
		MinBodyLine: 160, AlignmentPenalty: 30,
	}
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithSquatRules replaces the squat rules.
func WithSquatRules(r SquatRules) Option {
	return func(s *Scorer) { s.squat = r }
}

// WithPushupRules replaces the push-up rules.
func WithPushupRules(r PushupRules) Option {
	return func(s *Scorer) { s.pushup = r }
}

// Scorer is stateless and safe for concurrent use.
type Scorer struct {
	squat  SquatRules
	pushup PushupRules
}

// New returns a scorer with the default rules.
func New(opts ...Option) *Scorer {
	s := &Scorer{squat: DefaultSquatRules(), pushup: DefaultPushupRules()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type tally struct {
	score    int
	feedback []string
}

func (t *tally) deduct(penalty int, msg string) {
	t.score -= penalty
	t.feedback = append(t.feedback, msg)
}

func (t *tally) result(ok string) Result {
	if len(t.feedback) == 0 {
		t.feedback = []string{ok}
	}
	return Result{Score: max(0, t.score), Feedback: t.feedback}
}

// Squat scores one squat frame. Rules whose inputs are missing are skipped.
func (s *Scorer) Squat(f model.Frame, a model.JointAngles) Result {
	knee, ok := a.Knee()
	if !ok {
		return Result{Score: 0, Feedback: []string{MsgNoPose}}
	}
	r := s.squat
	t := tally{score: maxScore}

	if d, ok := model.Diff(a.LeftKnee, a.RightKnee); ok && d > r.MaxKneeDiff {
		t.deduct(r.SymmetryPenalty, "Keep both knees aligned")
	}
	if knee > r.MaxKnee {
		t.deduct(r.DepthPenalty, "Go deeper - bend knees more")
	}
	if hip, ok := a.Hip(); ok && hip > r.MaxHip {
		t.deduct(r.HipPenalty, "Push hips back more")
	}
	if !kneesTrack(f, r.TrackingMargin) {
		t.deduct(r.TrackingPenalty, "Keep knees over toes")
	}
	if lean, ok := torsoLean(f); ok && lean > r.MaxLean {
		t.deduct(r.PosturePenalty, "Maintain neutral spine position")
	}
	return t.result("Good form")
}

// Pushup scores one push-up frame.
func (s *Scorer) Pushup(f model.Frame, a model.JointAngles) Result {
	elbow, ok := a.Elbow()
	if !ok {
		return Result{Score: 0, Feedback: []string{MsgNoPose}}
	}
	r := s.pushup
	t := tally{score: maxScore}

	if d, ok := model.Diff(a.LeftElbow, a.RightElbow); ok && d > r.MaxElbowDiff {
		t.deduct(r.SymmetryPenalty, "Keep both arms moving together")
	}
	if elbow > r.MaxElbow {
		t.deduct(r.RangePenalty, "Go lower - bend elbows more")
	}
	if line, ok := BodyLine(f); ok && line < r.MinBodyLine {
		t.deduct(r.AlignmentPenalty, "Keep body straight - no sagging")
	}
	return t.result("Excellent form!")
}

// kneesTrack reports whether each knee lies horizontally within the span of
// its hip and ankle, widened by margin. Sides with missing points pass.
func kneesTrack(f model.Frame, margin float64) bool {
	sides := [2][3]model.Landmark{
		{model.LeftHip, model.LeftKnee, model.LeftAnkle},
		{model.RightHip, model.RightKnee, model.RightAnkle},
	}
	for _, s := range sides {
		pts, ok := f.Points(s[0], s[1], s[2])
		if !ok {
			continue
		}
		lo := math.Min(pts[0].X, pts[2].X) - margin
		hi := math.Max(pts[0].X, pts[2].X) + margin
		if pts[1].X < lo || pts[1].X > hi {
			return false
		}
	}
	return true
}

// torsoLean is the shoulder-midpoint to hip-midpoint lean from vertical.
func torsoLean(f model.Frame) (float64, bool) {
	sh, ok := geometry.Centroid(f, model.LeftShoulder, model.RightShoulder)
	if !ok {
		return 0, false
	}
	hp, ok := geometry.Centroid(f, model.LeftHip, model.RightHip)
	if !ok {
		return 0, false
	}
	return geometry.LeanFromVertical(sh, hp)
}

// BodyLine is the nose-hip-ankle angle on the left side, falling back to the
// right. 180 is a perfectly straight body.
func BodyLine(f model.Frame) (float64, bool) {
	for _, ids := range [][3]model.Landmark{
		{model.Nose, model.LeftHip, model.LeftAnkle},
		{model.Nose, model.RightHip, model.RightAnkle},
	} {
		pts, ok := f.Points(ids[0], ids[1], ids[2])
		if !ok {
			continue
		}
		deg, ok := geometry.Angle(geometry.Vec(pts[0], false), geometry.Vec(pts[1], false), geometry.Vec(pts[2], false))
		if ok {
			return float64(deg), true
		}
	}
	return 0, false
}

// Package workout wires one exercise session together: keypoints go through
// angle extraction, smoothing, the exercise analyzer and the rep counter, and
// finished reps land in the session aggregator.
package workout

import (
	"fmt"
	"time"

	"github.com/okian/formcoach/internal/domain/analyzer"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/geometry"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/rep"
	"github.com/okian/formcoach/internal/domain/session"
	"github.com/okian/formcoach/internal/domain/smoothing"
)

// MsgStopped is returned for frames that arrive after Stop.
const MsgStopped = "Session has ended"

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID        string      `json:"session_id"`
	Exercise  string      `json:"exercise"`
	Phase     model.Phase `json:"phase"`
	Count     int         `json:"count"`
	LastScore int         `json:"last_score"`
	RepScores []float64   `json:"rep_scores"`
	Feedback  []string    `json:"feedback"`
	Frames    int         `json:"frames"`
	StartedAt time.Time   `json:"started_at"`
	Stopped   bool        `json:"stopped"`
}

// Session processes the frames of one workout. It is not safe for
// concurrent use.
type Session struct {
	cfg       settings
	profile   exercise.Profile
	extractor *geometry.Extractor
	smoother  *smoothing.AngleSmoother
	analyzer  analyzer.Analyzer
	counter   rep.Counter
	agg       *session.Aggregator

	prev      model.JointAngles
	frames    int
	longest   int
	startedAt time.Time
	stopped   bool
	report    model.SessionReport
}

// New starts a session for exerciseID. Ids missing from the catalog use the
// generic profile.
func New(exerciseID string, opts ...Option) (*Session, error) {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.catalog == nil {
		cfg.catalog = exercise.Default()
	}
	if cfg.analyzers == nil {
		cfg.analyzers = analyzer.NewRegistry()
	}
	s := &Session{
		cfg:       cfg,
		extractor: geometry.NewExtractor(geometry.WithDepth(cfg.depth)),
		agg:       session.NewAggregator(cfg.weights),
		startedAt: cfg.clock.Now(),
	}
	if err := s.load(exerciseID); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) load(id string) error {
	p := s.cfg.catalog.Resolve(id)
	counter, err := rep.New(p, s.cfg.counterOpts...)
	if err != nil {
		return fmt.Errorf("load exercise %q: %w", id, err)
	}
	s.profile = p
	s.counter = counter
	s.analyzer = s.cfg.analyzers.New(p)
	s.smoother = smoothing.NewAngleSmoother(smoothing.WithWindowSize(s.cfg.window))
	return nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.cfg.id }

// Profile returns the current exercise.
func (s *Session) Profile() exercise.Profile { return s.profile }

// Stopped reports whether Stop has been called.
func (s *Session) Stopped() bool { return s.stopped }

// ProcessFrame runs one frame through the pipeline.
func (s *Session) ProcessFrame(f model.Frame) model.FrameResult {
	if s.stopped {
		return model.FrameResult{Phase: s.counter.Phase(), Count: s.counter.Count(), Feedback: []string{MsgStopped}}
	}
	s.frames++
	now := s.cfg.clock.Now()
	frame := f.Masked(s.cfg.minVisibility)
	raw, complete := s.extractor.Extract(frame)

	if !s.profile.Timed() && (!complete || !s.profile.Tracked(raw)) {
		u := s.counter.Observe(now, analyzer.Assessment{})
		return model.FrameResult{Phase: u.Phase, Count: u.Count, Feedback: []string{u.Message}}
	}

	smoothed := s.smoother.Smooth(raw)
	a := s.analyzer.Analyze(analyzer.Input{Frame: frame, Raw: raw, Angles: smoothed, At: now})
	u := s.counter.Observe(now, a)

	var feedback []string
	switch {
	case u.Event != nil && !s.profile.Timed():
		feedback = []string{u.Message}
	case u.Message != "":
		feedback = append([]string{u.Message}, a.Feedback...)
	default:
		feedback = a.Feedback
	}
	if u.Event != nil {
		s.agg.Add(float64(u.Event.FormScore))
	}
	if s.profile.Timed() {
		s.longest = max(s.longest, u.Count)
	}

	metrics := a.Metrics
	if metrics == nil {
		metrics = make(map[string]float64, 1)
	}
	if complete {
		stable := 0.0
		if geometry.IsMovementStable(s.prev, smoothed, s.cfg.stableThreshold) {
			stable = 1
		}
		metrics["stable"] = stable
		s.prev = smoothed
	}

	return model.FrameResult{
		Phase:     u.Phase,
		Count:     u.Count,
		FormScore: a.Score,
		Feedback:  feedback,
		Metrics:   metrics,
		Angles:    smoothed,
		Event:     u.Event,
		Valid:     a.Signal.Valid,
	}
}

// Reset clears every stage and restarts the session clock. It does nothing
// once the session is stopped.
func (s *Session) Reset() {
	if s.stopped {
		return
	}
	s.smoother.Reset()
	s.analyzer.Reset()
	s.counter.Reset()
	s.agg.Reset()
	s.prev = model.JointAngles{}
	s.frames, s.longest = 0, 0
	s.startedAt = s.cfg.clock.Now()
}

// SwitchExercise replaces every stage with fresh ones for id.
func (s *Session) SwitchExercise(id string) error {
	if s.stopped {
		return ErrStopped
	}
	if err := s.load(id); err != nil {
		return err
	}
	s.agg.Reset()
	s.prev = model.JointAngles{}
	s.frames, s.longest = 0, 0
	s.startedAt = s.cfg.clock.Now()
	return nil
}

// Stop closes the session and returns its report. Later calls return the
// same report.
func (s *Session) Stop() model.SessionReport {
	if s.stopped {
		return s.report
	}
	count := s.counter.Count()
	if s.profile.Timed() {
		count = s.longest
	}
	s.report = s.agg.Report(session.Summary{
		SessionID: s.cfg.id,
		Profile:   s.profile,
		Count:     count,
		StartedAt: s.startedAt,
		EndedAt:   s.cfg.clock.Now(),
	})
	s.stopped = true
	return s.report
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:        s.cfg.id,
		Exercise:  s.profile.ID,
		Phase:     s.counter.Phase(),
		Count:     s.counter.Count(),
		LastScore: s.counter.LastScore(),
		RepScores: s.agg.Scores(),
		Feedback:  s.counter.Feedback(),
		Frames:    s.frames,
		StartedAt: s.startedAt,
		Stopped:   s.stopped,
	}
}

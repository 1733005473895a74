package rep

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/formcoach/internal/domain/analyzer"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/ringbuf"
)

const (
	// MsgOutOfView replaces analyzer feedback while the signal is lost.
	MsgOutOfView = "Move into camera view for better tracking"

	DefaultFeedbackHistory = 5
	DefaultPraiseAt        = 80
)

// ScorePolicy decides which frame's score a repetition carries.
type ScorePolicy string

const (
	// ScoreLast uses the score of the frame that completed the rep.
	ScoreLast ScorePolicy = "last"
	// ScorePeak uses the score of the frame at the deepest point of the cycle.
	ScorePeak ScorePolicy = "peak"
)

// ParseScorePolicy accepts "last" or "peak"; empty means last.
func ParseScorePolicy(s string) (ScorePolicy, error) {
	switch ScorePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScoreLast:
		return ScoreLast, nil
	case ScorePeak:
		return ScorePeak, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Update is the tracker's view of one frame.
type Update struct {
	Phase model.Phase
	Count int
	Event *model.RepEvent
	// Message is the rep or out-of-view message, empty otherwise.
	Message string
}

// Counter is implemented by Tracker and HoldTracker.
type Counter interface {
	Observe(now time.Time, a analyzer.Assessment) Update
	Phase() model.Phase
	Count() int
	LastScore() int
	Feedback() []string
	Reset()
}

type options struct {
	history  int
	policy   ScorePolicy
	praiseAt int
}

// Option configures a Counter.
type Option func(*options)

// WithFeedbackHistory sets how many recent messages are kept.
func WithFeedbackHistory(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.history = n
		}
	}
}

// WithScorePolicy selects which frame's score a rep carries.
func WithScorePolicy(p ScorePolicy) Option {
	return func(o *options) {
		if p != "" {
			o.policy = p
		}
	}
}

// WithPraiseAt sets the score at which a rep earns the praise message.
func WithPraiseAt(score int) Option {
	return func(o *options) { o.praiseAt = score }
}

func newOptions(opts []Option) options {
	o := options{history: DefaultFeedbackHistory, policy: ScoreLast, praiseAt: DefaultPraiseAt}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the counter a profile needs: a HoldTracker for holds and a
// Tracker otherwise.
func New(p exercise.Profile, opts ...Option) (Counter, error) {
	if p.Phase.Mode == exercise.ModeHold {
		return NewHoldTracker(p, opts...), nil
	}
	d, err := NewDetector(p.Phase)
	if err != nil {
		return nil, fmt.Errorf("exercise %s: %w", p.ID, err)
	}
	return NewTracker(p, d, opts...), nil
}

// Tracker counts repetitions from a detector and keeps recent feedback.
type Tracker struct {
	profile  exercise.Profile
	detector Detector
	opts     options
	feedback *ringbuf.Ring[string]

	count     int
	lastScore int

	// deepest point since the last completed rep
	havePeak  bool
	peakValue float64
	peakScore int
}

// NewTracker wraps a detector.
func NewTracker(p exercise.Profile, d Detector, opts ...Option) *Tracker {
	o := newOptions(opts)
	return &Tracker{profile: p, detector: d, opts: o, feedback: ringbuf.New[string](o.history)}
}

// Observe feeds one assessment. Invalid signals leave the phase and count
// untouched.
func (t *Tracker) Observe(now time.Time, a analyzer.Assessment) Update {
	if !a.Signal.Valid {
		t.feedback.Push(MsgOutOfView)
		return Update{Phase: t.detector.Phase(), Count: t.count, Message: MsgOutOfView}
	}
	t.lastScore = a.Score
	t.trackPeak(a)

	if !t.detector.Update(now, a.Signal) {
		return Update{Phase: t.detector.Phase(), Count: t.count}
	}

	t.count++
	score := a.Score
	if t.opts.policy == ScorePeak && t.havePeak {
		score = t.peakScore
	}
	t.havePeak = false
	msg := t.profile.RepMessage(t.count, score, t.opts.praiseAt)
	t.feedback.Push(msg)
	return Update{
		Phase:   t.detector.Phase(),
		Count:   t.count,
		Message: msg,
		Event: &model.RepEvent{
			Exercise:  t.profile.ID,
			RepNumber: t.count,
			FormScore: score,
			At:        now,
		},
	}
}

func (t *Tracker) trackPeak(a analyzer.Assessment) {
	h, ok := t.detector.(*Hysteresis)
	if !ok {
		if !t.havePeak || a.Score > t.peakScore {
			t.havePeak, t.peakScore = true, a.Score
		}
		return
	}
	if !t.havePeak || h.extreme(a.Signal.Value, t.peakValue) {
		t.havePeak, t.peakValue, t.peakScore = true, a.Signal.Value, a.Score
	}
}

func (t *Tracker) Phase() model.Phase { return t.detector.Phase() }

func (t *Tracker) Count() int { return t.count }

func (t *Tracker) LastScore() int { return t.lastScore }

// Feedback returns the recent messages, oldest first.
func (t *Tracker) Feedback() []string { return t.feedback.Values() }

func (t *Tracker) Reset() {
	t.detector.Reset()
	t.feedback.Reset()
	t.count, t.lastScore = 0, 0
	t.havePeak = false
}

// HoldTracker counts whole seconds of a held posture.
type HoldTracker struct {
	profile   exercise.Profile
	feedback  *ringbuf.Ring[string]
	holding   bool
	seconds   int
	events    int
	lastScore int
}

// NewHoldTracker returns a tracker in the ready phase.
func NewHoldTracker(p exercise.Profile, opts ...Option) *HoldTracker {
	o := newOptions(opts)
	return &HoldTracker{profile: p, feedback: ringbuf.New[string](o.history)}
}

// Observe emits one event each time the hold passes a new whole second.
// A broken posture drops the count back to zero; event numbers keep
// climbing across holds.
func (h *HoldTracker) Observe(now time.Time, a analyzer.Assessment) Update {
	if !a.Signal.Valid {
		h.feedback.Push(MsgOutOfView)
		return Update{Phase: h.Phase(), Count: h.seconds, Message: MsgOutOfView}
	}
	h.lastScore = a.Score
	if !a.Holding {
		h.holding, h.seconds = false, 0
		return Update{Phase: model.PhaseReady}
	}
	h.holding = true
	secs := int(a.HoldTime / time.Second)
	if secs <= h.seconds {
		return Update{Phase: model.PhaseHolding, Count: h.seconds}
	}
	h.seconds = secs
	h.events++
	return Update{
		Phase: model.PhaseHolding,
		Count: secs,
		Event: &model.RepEvent{
			Exercise:    h.profile.ID,
			RepNumber:   h.events,
			FormScore:   a.Score,
			HoldSeconds: secs,
			At:          now,
		},
	}
}

func (h *HoldTracker) Phase() model.Phase {
	if h.holding {
		return model.PhaseHolding
	}
	return model.PhaseReady
}

func (h *HoldTracker) Count() int { return h.seconds }

func (h *HoldTracker) LastScore() int { return h.lastScore }

func (h *HoldTracker) Feedback() []string { return h.feedback.Values() }

func (h *HoldTracker) Reset() {
	h.feedback.Reset()
	h.holding, h.seconds, h.events, h.lastScore = false, 0, 0, 0
}

package workout

import (
	"github.com/okian/formcoach/internal/domain/analyzer"
	"github.com/okian/formcoach/internal/domain/clock"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/rep"
	"github.com/okian/formcoach/internal/domain/session"
	"github.com/okian/formcoach/internal/domain/smoothing"
)

// DefaultStableThreshold is the largest per-joint change, in degrees,
// between consecutive smoothed frames that still counts as stable.
const DefaultStableThreshold = 5

type settings struct {
	id              string
	clock           clock.Clock
	catalog         *exercise.Registry
	analyzers       *analyzer.Registry
	window          int
	minVisibility   float64
	depth           bool
	stableThreshold float64
	weights         session.Weights
	counterOpts     []rep.Option
}

func defaults() settings {
	return settings{
		clock:           clock.Real{},
		window:          smoothing.DefaultWindow,
		stableThreshold: DefaultStableThreshold,
		weights:         session.DefaultWeights(),
	}
}

// Option configures a Session.
type Option func(*settings)

// WithID sets the id reported in the session report.
func WithID(id string) Option {
	return func(s *settings) { s.id = id }
}

// WithClock replaces the wall clock, mainly for tests and replays.
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithCatalog sets the exercise catalog; the built-in one is the default.
func WithCatalog(r *exercise.Registry) Option {
	return func(s *settings) { s.catalog = r }
}

// WithAnalyzers sets the analyzer registry.
func WithAnalyzers(r *analyzer.Registry) Option {
	return func(s *settings) { s.analyzers = r }
}

// WithSmoothingWindow sets the moving-average window of the angle smoother.
func WithSmoothingWindow(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithMinVisibility drops landmarks whose visibility is below v. Zero keeps
// every landmark.
func WithMinVisibility(v float64) Option {
	return func(s *settings) { s.minVisibility = v }
}

// WithDepth includes the z coordinate in joint angles.
func WithDepth(enabled bool) Option {
	return func(s *settings) { s.depth = enabled }
}

// WithStableThreshold sets the per-joint change reported as stable movement.
func WithStableThreshold(deg float64) Option {
	return func(s *settings) { s.stableThreshold = deg }
}

// WithWeights sets the overall score weights of the session report.
func WithWeights(w session.Weights) Option {
	return func(s *settings) { s.weights = w }
}

// WithCounterOptions passes options to the rep counter.
func WithCounterOptions(opts ...rep.Option) Option {
	return func(s *settings) { s.counterOpts = append(s.counterOpts, opts...) }
}

package analyzer

import (
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/scoring"
)

// DefaultScorerWeight is the share of the rule-based score when it is
// blended with an analyzer's sub-metrics.
const DefaultScorerWeight = 0.75

// Config is shared by every analyzer a registry builds.
type Config struct {
	Scorer       *scoring.Scorer
	ScorerWeight float64
}

// Factory builds a fresh analyzer for a profile.
type Factory func(p exercise.Profile, cfg Config) Analyzer

// Option configures a Registry.
type Option func(*Registry)

// WithScorer sets the rule-based scorer used by squat and push-up.
func WithScorer(s *scoring.Scorer) Option {
	return func(r *Registry) {
		if s != nil {
			r.cfg.Scorer = s
		}
	}
}

// WithScorerWeight sets the rule-based share of blended scores, in [0,1].
func WithScorerWeight(w float64) Option {
	return func(r *Registry) {
		if w >= 0 && w <= 1 {
			r.cfg.ScorerWeight = w
		}
	}
}

// Registry maps exercise ids to analyzer factories. Ids without a factory
// get the generic analyzer.
type Registry struct {
	factories map[string]Factory
	fallback  Factory
	cfg       Config
}

// NewRegistry returns a registry with every built-in analyzer registered.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		fallback:  NewGeneric,
		cfg:       Config{Scorer: scoring.New(), ScorerWeight: DefaultScorerWeight},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Register(exercise.Squats, NewSquat)
	r.Register(exercise.Pushups, NewPushup)
	r.Register(exercise.Plank, NewPlank)
	r.Register(exercise.Lunges, NewLunge)
	r.Register(exercise.BicepCurls, NewCurl)
	r.Register(exercise.ShoulderPress, NewPress)
	r.Register(exercise.Situps, NewSitup)
	r.Register(exercise.Deadlifts, NewDeadlift)
	return r
}

// Register adds or replaces the factory for id.
func (r *Registry) Register(id string, f Factory) {
	r.factories[id] = f
}

// Has reports whether id has a dedicated analyzer.
func (r *Registry) Has(id string) bool {
	_, ok := r.factories[id]
	return ok
}

// New builds a fresh analyzer for the profile.
func (r *Registry) New(p exercise.Profile) Analyzer {
	if f, ok := r.factories[p.ID]; ok {
		return f(p, r.cfg)
	}
	return r.fallback(p, r.cfg)
}

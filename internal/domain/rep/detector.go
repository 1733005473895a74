// Package rep turns per-frame analyzer signals into phases, repetition
// counts and rep events.
package rep

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/formcoach/internal/domain/analyzer"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/model"
)

// Detector is a phase state machine over a scalar signal.
type Detector interface {
	// Update feeds one valid signal and reports whether it completed a cycle.
	Update(now time.Time, s analyzer.Signal) (completed bool)
	Phase() model.Phase
	Reset()
}

// Hysteresis enters the active phase past one threshold and leaves it past
// another, so noise around a single threshold never produces a cycle.
type Hysteresis struct {
	cfg    exercise.PhaseConfig
	active bool
}

// NewHysteresis validates the band and returns a detector in the ready phase.
func NewHysteresis(cfg exercise.PhaseConfig) (*Hysteresis, error) {
	switch {
	case cfg.Enter == cfg.Exit,
		cfg.Direction == exercise.Below && cfg.Exit < cfg.Enter,
		cfg.Direction == exercise.Above && cfg.Exit > cfg.Enter:
		return nil, fmt.Errorf("%w: enter %.0f exit %.0f %s", ErrInvalidThresholds, cfg.Enter, cfg.Exit, cfg.Direction)
	case cfg.Direction != exercise.Below && cfg.Direction != exercise.Above:
		return nil, fmt.Errorf("%w: direction %q", ErrInvalidThresholds, cfg.Direction)
	}
	if cfg.Active == "" {
		cfg.Active = model.PhaseDown
	}
	if cfg.CountOn == "" {
		cfg.CountOn = exercise.OnExit
	}
	return &Hysteresis{cfg: cfg}, nil
}

func (h *Hysteresis) entered(v float64) bool {
	if h.cfg.Direction == exercise.Above {
		return v > h.cfg.Enter
	}
	return v < h.cfg.Enter
}

func (h *Hysteresis) left(v float64) bool {
	if h.cfg.Direction == exercise.Above {
		return v < h.cfg.Exit
	}
	return v > h.cfg.Exit
}

func (h *Hysteresis) Update(_ time.Time, s analyzer.Signal) bool {
	if math.IsNaN(s.Value) {
		return false
	}
	switch {
	case !h.active && h.entered(s.Value):
		h.active = true
		return h.cfg.CountOn == exercise.OnEnter
	case h.active && h.left(s.Value):
		h.active = false
		return h.cfg.CountOn == exercise.OnExit
	}
	return false
}

func (h *Hysteresis) Phase() model.Phase {
	if h.active {
		return h.cfg.Active
	}
	return model.PhaseReady
}

func (h *Hysteresis) Reset() { h.active = false }

// extreme reports whether a is further into the active band than b.
func (h *Hysteresis) extreme(a, b float64) bool {
	if h.cfg.Direction == exercise.Above {
		return a > b
	}
	return a < b
}

// Pulse counts a cycle whenever any channel moves more than Delta from its
// reference, then ignores movement for the refractory period and re-bases.
type Pulse struct {
	delta      float64
	refractory time.Duration
	active     model.Phase
	refs       []float64
	since      time.Time
	firing     bool
}

// NewPulse returns a pulse detector from the profile's phase config.
func NewPulse(cfg exercise.PhaseConfig) (*Pulse, error) {
	if cfg.Delta <= 0 || cfg.Refractory <= 0 {
		return nil, fmt.Errorf("%w: delta %.0f refractory %s", ErrInvalidThresholds, cfg.Delta, cfg.Refractory)
	}
	active := cfg.Active
	if active == "" {
		active = model.PhaseActive
	}
	return &Pulse{delta: cfg.Delta, refractory: cfg.Refractory, active: active}, nil
}

func series(s analyzer.Signal) []float64 {
	return append([]float64{s.Value}, s.Channels...)
}

func (p *Pulse) Update(now time.Time, s analyzer.Signal) bool {
	vals := series(s)
	if p.firing {
		if now.Sub(p.since) < p.refractory {
			return false
		}
		p.firing = false
		p.refs = nil
	}
	for len(p.refs) < len(vals) {
		p.refs = append(p.refs, math.NaN())
	}
	fired := false
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		ref := p.refs[i]
		if math.IsNaN(ref) {
			p.refs[i] = v
			continue
		}
		if math.Abs(v-ref) > p.delta {
			fired = true
		}
	}
	if fired {
		p.firing = true
		p.since = now
	}
	return fired
}

func (p *Pulse) Phase() model.Phase {
	if p.firing {
		return p.active
	}
	return model.PhaseReady
}

func (p *Pulse) Reset() {
	p.refs = nil
	p.firing = false
	p.since = time.Time{}
}

// NewDetector builds the detector a profile asks for. Hold profiles have no
// detector; they are tracked by HoldTracker.
func NewDetector(cfg exercise.PhaseConfig) (Detector, error) {
	switch cfg.Mode {
	case exercise.ModeHysteresis:
		return NewHysteresis(cfg)
	case exercise.ModePulse:
		return NewPulse(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}

// Package exercise holds the catalog of supported exercises: display data,
// form thresholds, scoring bands and the phase detector configuration.
package exercise

import (
	"fmt"
	"strconv"
	"time"

	"github.com/okian/formcoach/internal/domain/model"
)

// Type distinguishes counted exercises from timed holds.
type Type string

const (
	TypeReps Type = "reps"
	TypeTime Type = "time"
)

// Limbs names the body part a rep exercise must have in view.
type Limbs string

const (
	// LimbsLegs needs a knee and hip on one side.
	LimbsLegs Limbs = "legs"
	// LimbsArms needs an elbow on one side.
	LimbsArms Limbs = "arms"
)

// Mode selects the phase detector.
type Mode string

const (
	// ModeHysteresis counts a cycle through two distinct thresholds.
	ModeHysteresis Mode = "hysteresis"
	// ModePulse counts any large excursion, then waits out a refractory period.
	ModePulse Mode = "pulse"
	// ModeHold accumulates seconds while a posture is held.
	ModeHold Mode = "hold"
)

// Direction tells which side of the enter threshold is the active phase.
type Direction string

const (
	Below Direction = "below"
	Above Direction = "above"
)

// Trigger tells which transition completes a repetition.
type Trigger string

const (
	OnExit  Trigger = "exit"
	OnEnter Trigger = "enter"
)

// PhaseConfig parameterizes the rep detector for one exercise.
type PhaseConfig struct {
	Mode       Mode          `koanf:"mode" json:"mode"`
	Direction  Direction     `koanf:"direction" json:"direction,omitempty"`
	Enter      float64       `koanf:"enter" json:"enter,omitempty"`
	Exit       float64       `koanf:"exit" json:"exit,omitempty"`
	CountOn    Trigger       `koanf:"count_on" json:"count_on,omitempty"`
	Active     model.Phase   `koanf:"active" json:"active,omitempty"`
	Delta      float64       `koanf:"delta" json:"delta,omitempty"`
	Refractory time.Duration `koanf:"refractory" json:"refractory,omitempty"`
}

// Bands are the overall-score cut-offs used when describing performance.
type Bands struct {
	Excellent int `koanf:"excellent" json:"excellent"`
	Good      int `koanf:"good" json:"good"`
	Fair      int `koanf:"fair" json:"fair"`
}

// Profile describes one exercise. Profiles are values; the registry hands
// out copies.
type Profile struct {
	ID            string             `koanf:"id" json:"id"`
	Name          string             `koanf:"name" json:"name"`
	Description   string             `koanf:"description" json:"description"`
	Type          Type               `koanf:"type" json:"type"`
	Category      string             `koanf:"category" json:"category"`
	Difficulty    string             `koanf:"difficulty" json:"difficulty"`
	TargetMuscles []string           `koanf:"target_muscles" json:"target_muscles"`
	Instructions  []string           `koanf:"instructions" json:"instructions"`
	Criteria      map[string]float64 `koanf:"criteria" json:"form_criteria"`
	Bands         Bands              `koanf:"bands" json:"scoring"`
	TimeTargets   map[string]int     `koanf:"time_targets" json:"time_targets,omitempty"`
	Phase         PhaseConfig        `koanf:"phase" json:"phase"`
	Tracks        Limbs              `koanf:"tracks" json:"tracks,omitempty"`
	RepPraise     string             `koanf:"rep_praise" json:"-"`
	RepCoach      string             `koanf:"rep_coach" json:"-"`
	Tip           string             `koanf:"tip" json:"tip,omitempty"`
}

// Criterion returns a named form threshold or def when unset.
func (p Profile) Criterion(name string, def float64) float64 {
	if v, ok := p.Criteria[name]; ok {
		return v
	}
	return def
}

// RepMessage is the feedback shown when repetition n completes.
func (p Profile) RepMessage(n, score, praiseAt int) string {
	if score >= praiseAt && p.RepPraise != "" {
		return p.RepPraise + " Rep " + strconv.Itoa(n)
	}
	coach := p.RepCoach
	if coach == "" {
		coach = "work on form"
	}
	return fmt.Sprintf("Rep %d - %s", n, coach)
}

// Tracked reports whether the angles cover the limbs the exercise is
// counted on. Legs are assumed when Tracks is unset.
func (p Profile) Tracked(j model.JointAngles) bool {
	if p.Tracks == LimbsArms {
		return j.HasArms()
	}
	return j.Valid()
}

// Timed reports whether the exercise is held rather than counted.
func (p Profile) Timed() bool { return p.Type == TypeTime }

func (p Profile) clone() Profile {
	c := p
	c.TargetMuscles = append([]string(nil), p.TargetMuscles...)
	c.Instructions = append([]string(nil), p.Instructions...)
	if p.Criteria != nil {
		c.Criteria = make(map[string]float64, len(p.Criteria))
		for k, v := range p.Criteria {
			c.Criteria[k] = v
		}
	}
	if p.TimeTargets != nil {
		c.TimeTargets = make(map[string]int, len(p.TimeTargets))
		for k, v := range p.TimeTargets {
			c.TimeTargets[k] = v
		}
	}
	return c
}

// Validate checks that the profile can drive a detector.
func (p Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProfile)
	}
	if p.Type != TypeReps && p.Type != TypeTime {
		return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidProfile, p.ID, p.Type)
	}
	if p.Tracks != "" && p.Tracks != LimbsLegs && p.Tracks != LimbsArms {
		return fmt.Errorf("%w: %s: unknown tracked limbs %q", ErrInvalidProfile, p.ID, p.Tracks)
	}
	if p.Bands.Excellent < p.Bands.Good || p.Bands.Good < p.Bands.Fair {
		return fmt.Errorf("%w: %s: scoring bands must descend", ErrInvalidProfile, p.ID)
	}
	ph := p.Phase
	switch ph.Mode {
	case ModeHysteresis:
		if ph.Enter == ph.Exit {
			return fmt.Errorf("%w: %s: enter and exit thresholds must differ", ErrInvalidProfile, p.ID)
		}
		if ph.Direction == Below && ph.Exit < ph.Enter || ph.Direction == Above && ph.Exit > ph.Enter {
			return fmt.Errorf("%w: %s: exit threshold is inside the active band", ErrInvalidProfile, p.ID)
		}
		if ph.Direction != Below && ph.Direction != Above {
			return fmt.Errorf("%w: %s: unknown direction %q", ErrInvalidProfile, p.ID, ph.Direction)
		}
		if ph.CountOn != OnExit && ph.CountOn != OnEnter {
			return fmt.Errorf("%w: %s: unknown count trigger %q", ErrInvalidProfile, p.ID, ph.CountOn)
		}
	case ModePulse:
		if ph.Delta <= 0 || ph.Refractory <= 0 {
			return fmt.Errorf("%w: %s: pulse needs positive delta and refractory", ErrInvalidProfile, p.ID)
		}
	case ModeHold:
		if p.Type != TypeTime {
			return fmt.Errorf("%w: %s: hold mode needs a time exercise", ErrInvalidProfile, p.ID)
		}
	default:
		return fmt.Errorf("%w: %s: unknown phase mode %q", ErrInvalidProfile, p.ID, ph.Mode)
	}
	return nil
}

package model

import "time"

// Phase is the position of a movement within its cycle.
type Phase string

const (
	PhaseReady   Phase = "ready"
	PhaseDown    Phase = "down"
	PhaseUp      Phase = "up"
	PhaseHolding Phase = "holding"
	PhaseLunge   Phase = "lunge"
	PhaseActive  Phase = "active"
)

// RepEvent is emitted once per completed repetition, or once per elapsed
// second for timed exercises.
type RepEvent struct {
	Exercise    string    `json:"exercise"`
	RepNumber   int       `json:"rep_number"`
	FormScore   int       `json:"form_score"`
	HoldSeconds int       `json:"hold_seconds,omitempty"`
	At          time.Time `json:"at"`
}

// FrameResult is what a caller receives for every processed frame.
type FrameResult struct {
	Phase     Phase              `json:"phase"`
	Count     int                `json:"count"`
	FormScore int                `json:"form_score"`
	Feedback  []string           `json:"feedback"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Angles    JointAngles        `json:"angles"`
	Event     *RepEvent          `json:"event,omitempty"`
	Valid     bool               `json:"valid"`
}

// FrameJob carries a frame through the asynchronous ingestion path.
type FrameJob struct {
	FrameID    string
	SessionID  string
	Frame      Frame
	ReceivedAt time.Time
}

// SessionReport summarizes a finished workout session.
type SessionReport struct {
	SessionID       string    `json:"session_id"`
	Exercise        string    `json:"exercise"`
	ExerciseName    string    `json:"exercise_name"`
	ExerciseType    string    `json:"exercise_type"`
	TotalReps       int       `json:"total_reps"`
	DurationSeconds int       `json:"duration_seconds"`
	RepScores       []int     `json:"rep_scores"`
	AverageScore    float64   `json:"average_score"`
	BestRepScore    float64   `json:"best_rep_score"`
	Consistency     float64   `json:"consistency"`
	OverallScore    int       `json:"overall_score"`
	Feedback        string    `json:"feedback"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
}

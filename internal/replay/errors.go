package replay

import "errors"

var (
	// ErrUnsupportedExercise is returned when no synthetic motion exists for an exercise.
	ErrUnsupportedExercise = errors.New("no synthetic workout for exercise")
	// ErrUnexpectedStatus is returned when the service answers with an unexpected HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrRepMismatch is returned when the report disagrees with the replayed workout.
	ErrRepMismatch = errors.New("reported reps differ from replayed reps")
	// ErrNotDrained is returned when queued frames are not processed in time.
	ErrNotDrained = errors.New("queued frames were not processed in time")
)

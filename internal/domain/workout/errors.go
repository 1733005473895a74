package workout

import "errors"

// ErrStopped is returned when a stopped session is asked to change.
var ErrStopped = errors.New("workout session stopped")

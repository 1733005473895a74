package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrBackpressure = errors.New("backpressure")
	ErrStopped      = errors.New("worker pool stopped")
)

package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionStopped  = errors.New("session stopped")
	ErrBackpressure    = errors.New("backpressure")
	ErrNotStarted      = errors.New("service not started")
)

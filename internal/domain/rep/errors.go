package rep

import "errors"

var (
	// ErrInvalidThresholds is returned for a hysteresis band whose enter
	// and exit thresholds do not bracket an active region.
	ErrInvalidThresholds = errors.New("invalid phase thresholds")
	// ErrUnknownMode is returned for a profile whose detector mode is not supported.
	ErrUnknownMode = errors.New("unknown detector mode")
	// ErrUnknownPolicy is returned when a score policy name is not recognised.
	ErrUnknownPolicy = errors.New("unknown score policy")
)

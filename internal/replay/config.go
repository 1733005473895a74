// Package replay drives a running coaching service over HTTP with
// synthetic workouts and checks the report it returns.
package replay

import "time"

// Config holds configuration for a replay run
type Config struct {
	BaseURL  string        // Base URL of the service
	Exercise string        // Exercise id to perform
	Reps     int           // Repetitions, or seconds for timed exercises
	Async    bool          // Submit frames through the async endpoint
	Interval time.Duration // Pause between frames
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every frame result
}

// Stats holds run statistics
type Stats struct {
	FramesGenerated int
	FramesAccepted  int
	FramesDuplicate int
	FramesFailed    int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

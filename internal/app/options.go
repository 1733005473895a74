package service

import (
	"time"

	"github.com/okian/formcoach/internal/domain/clock"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/workout"
	"github.com/okian/formcoach/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of async workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets how many async frames may wait across all workers.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many async frame ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the exercise catalog served and used by new sessions.
func WithCatalog(r *exercise.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.catalog = r
		}
	}
}

// WithClock replaces the wall clock for sessions and idle tracking.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithSessionTTL drops sessions idle for longer than ttl. Zero disables it.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithReapInterval sets how often idle sessions are looked for.
func WithReapInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reapInterval = d
		}
	}
}

// WithSessionOptions adds options applied to every new workout session.
func WithSessionOptions(opts ...workout.Option) Option {
	return func(s *Service) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// Package config defines service configuration and how it is loaded.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/formcoach/internal/domain/rep"
	"github.com/okian/formcoach/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the frames waiting on the async path, across all shards.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of async workers (one per shard).
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many async frame ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	SmoothingWindow int     `koanf:"smoothing_window"`
	MinVisibility   float64 `koanf:"min_visibility"`
	UseDepth        bool    `koanf:"use_depth"`
	FeedbackHistory int     `koanf:"feedback_history"`

	// RepScorePolicy is "last" or "peak".
	RepScorePolicy string `koanf:"rep_score_policy"`

	// ScorerWeight blends the rule scorer into analyzer scores (0..1).
	ScorerWeight float64 `koanf:"scorer_weight"`

	// SessionTTLSeconds evicts sessions idle for longer; 0 disables the reaper.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// CatalogFile optionally replaces the built-in exercise catalog.
	CatalogFile string `koanf:"catalog_file"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		QueueSize:         4096,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        100_000,
		SmoothingWindow:   5,
		MinVisibility:     0,
		UseDepth:          false,
		FeedbackHistory:   5,
		RepScorePolicy:    string(rep.ScoreLast),
		ScorerWeight:      0.75,
		SessionTTLSeconds: 900,
	}
}

// SessionTTL returns the idle timeout as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// Validate reports every invalid field at once, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if err := checkLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := logger.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	if c.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("queue_size must be positive, got %d", c.QueueSize))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("worker_count must be positive, got %d", c.WorkerCount))
	}
	if c.SmoothingWindow < 1 {
		errs = append(errs, fmt.Errorf("smoothing_window must be positive, got %d", c.SmoothingWindow))
	}
	if c.MinVisibility < 0 || c.MinVisibility > 1 {
		errs = append(errs, fmt.Errorf("min_visibility must be within [0,1], got %v", c.MinVisibility))
	}
	if c.FeedbackHistory < 1 {
		errs = append(errs, fmt.Errorf("feedback_history must be positive, got %d", c.FeedbackHistory))
	}
	if _, err := rep.ParseScorePolicy(c.RepScorePolicy); err != nil {
		errs = append(errs, err)
	}
	if c.ScorerWeight < 0 || c.ScorerWeight > 1 {
		errs = append(errs, fmt.Errorf("scorer_weight must be within [0,1], got %v", c.ScorerWeight))
	}
	if c.SessionTTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("session_ttl_seconds must not be negative, got %d", c.SessionTTLSeconds))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func checkLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
}

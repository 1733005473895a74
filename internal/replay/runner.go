package replay

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/pkg/logger"
)

const drainPollInterval = 20 * time.Millisecond

// Run replays one synthetic workout against the service and returns the
// session report. Repetition exercises must report exactly cfg.Reps.
func Run(ctx context.Context, cfg *Config) (model.SessionReport, *Stats, error) {
	var report model.SessionReport
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("replay")

	log.Info(ctx, "starting replay",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("exercise", cfg.Exercise),
		logger.Int("reps", cfg.Reps),
		logger.Bool("async", cfg.Async),
		logger.Duration("interval", cfg.Interval))

	frames, err := Workout(cfg.Exercise, cfg.Reps)
	if err != nil {
		return report, stats, err
	}
	stats.FramesGenerated = len(frames)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if _, err := client.Do(ctx, http.MethodGet, "/healthz", nil, nil, http.StatusOK); err != nil {
		return report, stats, fmt.Errorf("service health check failed: %w", err)
	}

	var info sessionInfo
	if _, err := client.Do(ctx, http.MethodPost, "/sessions", map[string]string{"exercise": cfg.Exercise}, &info, http.StatusCreated); err != nil {
		return report, stats, fmt.Errorf("create session: %w", err)
	}
	log.Info(ctx, "session started", logger.String("sessionID", info.SessionID), logger.String("exercise", info.ExerciseName))
	base := "/sessions/" + info.SessionID

	if err := submit(ctx, client, base, frames, cfg, stats, log); err != nil {
		return report, stats, err
	}
	if cfg.Async {
		if err := waitDrained(ctx, client, base, stats.FramesAccepted); err != nil {
			return report, stats, err
		}
	}

	if _, err := client.Do(ctx, http.MethodPost, base+"/stop", nil, &report, http.StatusOK); err != nil {
		return report, stats, fmt.Errorf("stop session: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "replay finished",
		logger.Int("framesGenerated", stats.FramesGenerated),
		logger.Int("framesAccepted", stats.FramesAccepted),
		logger.Int("framesFailed", stats.FramesFailed),
		logger.Int("totalReps", report.TotalReps),
		logger.Int("overallScore", report.OverallScore),
		logger.Duration("duration", stats.Duration))

	if info.ExerciseType == string(exercise.TypeReps) && report.TotalReps != cfg.Reps {
		return report, stats, fmt.Errorf("%w: want %d, got %d", ErrRepMismatch, cfg.Reps, report.TotalReps)
	}
	return report, stats, nil
}

func submit(ctx context.Context, client *HTTPClient, base string, frames []model.Frame, cfg *Config, stats *Stats, log logger.Logger) error {
	path := base + "/frames"
	if cfg.Async {
		path += "/async"
	}
	for i, f := range frames {
		req := frameRequest{FrameID: fmt.Sprintf("f-%06d", i), Landmarks: f}
		if cfg.Async {
			var ack ackResponse
			if _, err := client.Do(ctx, http.MethodPost, path, req, &ack, http.StatusAccepted, http.StatusOK); err != nil {
				stats.FramesFailed++
				log.Warn(ctx, "frame rejected", logger.Int("frame", i), logger.Error(err))
			} else if ack.Duplicate {
				stats.FramesDuplicate++
			} else {
				stats.FramesAccepted++
			}
		} else {
			var res model.FrameResult
			if _, err := client.Do(ctx, http.MethodPost, path, req, &res, http.StatusOK); err != nil {
				stats.FramesFailed++
				log.Warn(ctx, "frame rejected", logger.Int("frame", i), logger.Error(err))
			} else {
				stats.FramesAccepted++
				if cfg.Verbose {
					log.Info(ctx, "frame", logger.Int("frame", i),
						logger.String("phase", string(res.Phase)),
						logger.Int("count", res.Count),
						logger.Int("formScore", res.FormScore),
						logger.Any("feedback", res.Feedback))
				}
			}
		}
		if cfg.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Interval):
			}
		}
	}
	return nil
}

// waitDrained polls the snapshot until every accepted frame was processed.
func waitDrained(ctx context.Context, client *HTTPClient, base string, accepted int) error {
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for {
		var snap snapshot
		if _, err := client.Do(ctx, http.MethodGet, base, nil, &snap, http.StatusOK); err != nil {
			return err
		}
		if snap.Frames >= accepted {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %d of %d: %w", ErrNotDrained, snap.Frames, accepted, ctx.Err())
		case <-ticker.C:
		}
	}
}

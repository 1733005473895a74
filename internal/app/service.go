// Package service owns the live workout sessions and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	workerpool "github.com/okian/formcoach/internal/adapters/mq/worker"
	"github.com/okian/formcoach/internal/domain/clock"
	"github.com/okian/formcoach/internal/domain/dedupe"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/workout"
	"github.com/okian/formcoach/pkg/logger"
	"github.com/okian/formcoach/pkg/metrics"
)

const (
	defaultQueueSize    = 4096
	defaultDedupeSize   = 100_000
	defaultSessionTTL   = 15 * time.Minute
	defaultReapInterval = 30 * time.Second
)

// SessionInfo describes a newly created session.
type SessionInfo struct {
	SessionID    string        `json:"session_id"`
	Exercise     string        `json:"exercise"`
	ExerciseName string        `json:"exercise_name"`
	ExerciseType exercise.Type `json:"exercise_type"`
	StartedAt    time.Time     `json:"started_at"`
}

// Ack is the outcome of an async frame submission.
type Ack struct {
	FrameID   string `json:"frame_id"`
	Duplicate bool   `json:"duplicate"`
}

// entry serializes access to one session; the core is not safe for
// concurrent frames.
type entry struct {
	mu       sync.Mutex
	session  *workout.Session
	exercise string
	lastSeen atomic.Int64
}

func (e *entry) touch(now time.Time) { e.lastSeen.Store(now.UnixNano()) }

// Service implements the API dependencies for the coaching system.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	catalog *exercise.Registry
	clock   clock.Clock
	deduper dedupe.Deduper
	pool    *workerpool.Pool

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	sessionTTL   time.Duration
	reapInterval time.Duration
	sessionOpts  []workout.Option

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:     make(map[string]*entry),
		catalog:      exercise.Default(),
		clock:        clock.Real{},
		workerCount:  runtime.NumCPU(),
		queueSize:    defaultQueueSize,
		dedupeSize:   defaultDedupeSize,
		sessionTTL:   defaultSessionTTL,
		reapInterval: defaultReapInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the async path and the idle reaper.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting coaching service...")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.pool = workerpool.NewPool(s.workerCount, workerpool.ProcessorFunc(s.processJob),
		workerpool.WithQueueSize(s.queueSize),
	)
	// workers outlive the request that started the service
	s.pool.Start(context.WithoutCancel(ctx))

	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.housekeeping(s.stopCh)

	s.started = true
	s.logger.Info(ctx, "coaching service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Duration("sessionTTL", s.sessionTTL),
	)
	return nil
}

// Stop drains queued frames and stops background work. Sessions are kept.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	pool := s.pool
	close(s.stopCh)
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping coaching service...")
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.wg.Wait()
	s.logger.Info(ctx, "coaching service stopped")
}

// Catalog returns the exercise catalog.
func (s *Service) Catalog() *exercise.Registry { return s.catalog }

// CreateSession starts a workout for exerciseID. Unknown ids get the
// generic profile.
func (s *Service) CreateSession(ctx context.Context, exerciseID string) (SessionInfo, error) {
	id := uuid.NewString()
	opts := make([]workout.Option, 0, len(s.sessionOpts)+3)
	opts = append(opts, s.sessionOpts...)
	opts = append(opts, workout.WithID(id), workout.WithClock(s.clock), workout.WithCatalog(s.catalog))

	sess, err := workout.New(exerciseID, opts...)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("create session: %w", err)
	}
	p := sess.Profile()
	e := &entry{session: sess, exercise: p.ID}
	e.touch(s.clock.Now())

	s.mu.Lock()
	s.sessions[id] = e
	active := len(s.sessions)
	s.mu.Unlock()

	metrics.RecordSessionStarted(p.ID)
	metrics.UpdateSessionsActive(active)
	s.log().Info(ctx, "session created",
		logger.String("session_id", id),
		logger.String("exercise", p.ID),
	)

	return SessionInfo{
		SessionID:    id,
		Exercise:     p.ID,
		ExerciseName: p.Name,
		ExerciseType: p.Type,
		StartedAt:    sess.Snapshot().StartedAt,
	}, nil
}

func (s *Service) lookup(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e, nil
}

// ProcessFrame runs a frame synchronously and returns its result.
func (s *Service) ProcessFrame(ctx context.Context, sessionID string, f model.Frame) (model.FrameResult, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return model.FrameResult{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return s.process(ctx, e, f)
}

// process must be called with e.mu held.
func (s *Service) process(ctx context.Context, e *entry, f model.Frame) (model.FrameResult, error) {
	if e.session.Stopped() {
		metrics.RecordFrameRejected("stopped")
		return model.FrameResult{}, fmt.Errorf("%w: %s", ErrSessionStopped, e.session.ID())
	}
	start := time.Now()
	e.touch(s.clock.Now())

	res := e.session.ProcessFrame(f)

	metrics.RecordFrameLatency(float64(time.Since(start).Microseconds()) / 1000)
	if !res.Valid {
		metrics.RecordFrameRejected("out_of_view")
	} else {
		metrics.RecordFrameProcessed(e.exercise)
	}
	if res.Event != nil {
		metrics.RecordRep(e.exercise, res.Event.FormScore)
		s.log().Debug(ctx, "rep counted",
			logger.String("session_id", e.session.ID()),
			logger.Int("rep", res.Event.RepNumber),
			logger.Int("score", res.Event.FormScore),
		)
	}
	return res, nil
}

// EnqueueFrame accepts a frame for asynchronous processing. Frames are
// deduplicated per session by frame id; an empty id gets a fresh one.
func (s *Service) EnqueueFrame(ctx context.Context, sessionID, frameID string, f model.Frame) (Ack, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return Ack{}, err
	}
	e.mu.Lock()
	stopped := e.session.Stopped()
	e.mu.Unlock()
	if stopped {
		return Ack{}, fmt.Errorf("%w: %s", ErrSessionStopped, sessionID)
	}

	s.mu.RLock()
	started, pool, deduper := s.started, s.pool, s.deduper
	s.mu.RUnlock()
	if !started {
		return Ack{}, ErrNotStarted
	}

	if frameID == "" {
		frameID = uuid.NewString()
	}
	key := sessionID + "/" + frameID
	if deduper.SeenAndRecord(ctx, key) {
		metrics.RecordFrameDuplicate()
		return Ack{FrameID: frameID, Duplicate: true}, nil
	}

	job := model.FrameJob{FrameID: frameID, SessionID: sessionID, Frame: f, ReceivedAt: time.Now()}
	if err := pool.Submit(ctx, job); err != nil {
		// let the client retry the same frame id
		deduper.Unrecord(ctx, key)
		if errors.Is(err, workerpool.ErrBackpressure) {
			return Ack{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return Ack{}, fmt.Errorf("enqueue frame: %w", err)
	}
	return Ack{FrameID: frameID}, nil
}

func (s *Service) processJob(ctx context.Context, j model.FrameJob) error { //nolint:gocritic // hugeParam
	e, err := s.lookup(j.SessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = s.process(ctx, e, j.Frame)
	return err
}

// Snapshot returns the current state of a session.
func (s *Service) Snapshot(_ context.Context, sessionID string) (workout.Snapshot, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return workout.Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Snapshot(), nil
}

// Reset clears a session's counters and history.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	e, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Stopped() {
		return fmt.Errorf("%w: %s", ErrSessionStopped, sessionID)
	}
	e.session.Reset()
	e.touch(s.clock.Now())
	s.log().Debug(ctx, "session reset", logger.String("session_id", sessionID))
	return nil
}

// SwitchExercise moves a session to another exercise, discarding progress.
func (s *Service) SwitchExercise(ctx context.Context, sessionID, exerciseID string) (SessionInfo, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return SessionInfo{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.session.SwitchExercise(exerciseID); err != nil {
		if errors.Is(err, workout.ErrStopped) {
			return SessionInfo{}, fmt.Errorf("%w: %s", ErrSessionStopped, sessionID)
		}
		return SessionInfo{}, fmt.Errorf("switch exercise: %w", err)
	}
	p := e.session.Profile()
	e.exercise = p.ID
	e.touch(s.clock.Now())
	s.log().Info(ctx, "exercise switched",
		logger.String("session_id", sessionID),
		logger.String("exercise", p.ID),
	)
	return SessionInfo{
		SessionID:    sessionID,
		Exercise:     p.ID,
		ExerciseName: p.Name,
		ExerciseType: p.Type,
		StartedAt:    e.session.Snapshot().StartedAt,
	}, nil
}

// StopSession finalizes a session. Stopping twice returns the same report.
// The session stays readable until the reaper removes it.
func (s *Service) StopSession(ctx context.Context, sessionID string) (model.SessionReport, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return model.SessionReport{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	first := !e.session.Stopped()
	report := e.session.Stop()
	e.touch(s.clock.Now())
	if first {
		metrics.RecordSessionCompleted(report.Exercise, report.OverallScore)
		s.log().Info(ctx, "session stopped",
			logger.String("session_id", sessionID),
			logger.String("exercise", report.Exercise),
			logger.Int("reps", report.TotalReps),
			logger.Int("overall", report.OverallScore),
		)
	}
	return report, nil
}

// ReapIdle removes sessions untouched for longer than the session TTL and
// returns how many were removed.
func (s *Service) ReapIdle(ctx context.Context) int {
	if s.sessionTTL <= 0 {
		return 0
	}
	cutoff := s.clock.Now().Add(-s.sessionTTL).UnixNano()

	s.mu.Lock()
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Load() < cutoff {
			delete(s.sessions, id)
			removed++
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	for i := 0; i < removed; i++ {
		metrics.RecordSessionExpired()
	}
	metrics.UpdateSessionsActive(active)
	if removed > 0 {
		s.log().Info(ctx, "idle sessions removed", logger.Int("count", removed))
	}
	return removed
}

func (s *Service) housekeeping(stop <-chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.ReapIdle(context.Background())
			metrics.CollectSystem()
		}
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"sessions":    len(s.sessions),
		"exercises":   len(s.catalog.All()),
	}
	if s.pool != nil {
		stats["queueLength"] = s.pool.Len()
		stats["framesProcessed"] = s.pool.Processed()
		stats["framesFailed"] = s.pool.Failed()
	}
	if s.deduper != nil {
		stats["dedupeEntries"] = s.deduper.Size()
	}
	return stats
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get().Named("service")
	}
	return s.logger
}

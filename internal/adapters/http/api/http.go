// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/formcoach/internal/app"
	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/domain/model"
	"github.com/okian/formcoach/internal/domain/workout"
)

// maxBodyBytes bounds request bodies; a 33-point frame is well under 8 KiB.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Catalog() *exercise.Registry

	CreateSession(ctx context.Context, exerciseID string) (service.SessionInfo, error)
	ProcessFrame(ctx context.Context, sessionID string, f model.Frame) (model.FrameResult, error)

	// EnqueueFrame pushes a frame for async processing.
	EnqueueFrame(ctx context.Context, sessionID, frameID string, f model.Frame) (service.Ack, error)

	Snapshot(ctx context.Context, sessionID string) (workout.Snapshot, error)
	Reset(ctx context.Context, sessionID string) error
	SwitchExercise(ctx context.Context, sessionID, exerciseID string) (service.SessionInfo, error)
	StopSession(ctx context.Context, sessionID string) (model.SessionReport, error)
}

// Server wires HTTP routes for the coaching API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	exercisesHandler *ExercisesHandler
	sessionsHandler  *SessionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		exercisesHandler: NewExercisesHandler(deps.Catalog()),
		sessionsHandler:  NewSessionsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /exercises", MetricsMiddleware(s.exercisesHandler.HandleList, "exercises"))
	mux.HandleFunc("GET /exercises/categories", MetricsMiddleware(s.exercisesHandler.HandleCategories, "exercise_categories"))
	mux.HandleFunc("GET /exercises/{id}", MetricsMiddleware(s.exercisesHandler.HandleGet, "exercise"))

	sh := s.sessionsHandler
	mux.HandleFunc("POST /sessions", MetricsMiddleware(sh.HandleCreate, "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(sh.HandleSnapshot, "session"))
	mux.HandleFunc("POST /sessions/{id}/frames", MetricsMiddleware(sh.HandleFrame, "frames"))
	mux.HandleFunc("POST /sessions/{id}/frames/async", MetricsMiddleware(sh.HandleFrameAsync, "frames_async"))
	mux.HandleFunc("POST /sessions/{id}/reset", MetricsMiddleware(sh.HandleReset, "reset"))
	mux.HandleFunc("POST /sessions/{id}/exercise", MetricsMiddleware(sh.HandleSwitch, "switch_exercise"))
	mux.HandleFunc("POST /sessions/{id}/stop", MetricsMiddleware(sh.HandleStop, "stop"))
}

type ackResponse struct {
	Status    string `json:"status"`
	FrameID   string `json:"frame_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// kindOf maps service errors onto API error kinds.
func kindOf(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return ErrNotFound
	case errors.Is(err, service.ErrSessionStopped):
		return ErrConflict
	case errors.Is(err, service.ErrBackpressure), errors.Is(err, service.ErrNotStarted):
		return ErrBackpressure
	default:
		return ErrInternal
	}
}

// writeKind writes err with the status its kind implies.
func writeKind(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "session_stopped", err)
	case errors.Is(err, ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

func decode(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

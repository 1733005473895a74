package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/formcoach/internal/domain/model"
)

// SessionsHandler serves the workout session routes.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a session handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

type exerciseRequest struct {
	Exercise string `json:"exercise"`
}

func (e exerciseRequest) validate() error {
	if strings.TrimSpace(e.Exercise) == "" {
		return errors.New("missing exercise")
	}
	return nil
}

// frameRequest carries one pose frame. Landmarks are indexed by the
// 33-point pose topology; null entries are missing points.
type frameRequest struct {
	FrameID   string      `json:"frame_id"`
	Landmarks model.Frame `json:"landmarks"`
}

func (f frameRequest) validate() error {
	if len(f.Landmarks) == 0 {
		return errors.New("missing landmarks")
	}
	return nil
}

// HandleCreate handles POST /sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req exerciseRequest
	if err := decode(r, w, &req); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	info, err := h.deps.CreateSession(r.Context(), strings.TrimSpace(req.Exercise))
	if err != nil {
		writeKind(w, WrapKind(op, kindOf(err), err))
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// HandleSnapshot handles GET /sessions/{id}.
func (h *SessionsHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	snap, err := h.deps.Snapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeKind(w, WrapKind(op, kindOf(err), err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleFrame handles POST /sessions/{id}/frames and answers with the
// frame result.
func (h *SessionsHandler) HandleFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_frame"
	var req frameRequest
	if err := decode(r, w, &req); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.ProcessFrame(r.Context(), r.PathValue("id"), req.Landmarks)
	if err != nil {
		writeKind(w, WrapKind(op, kindOf(err), err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleFrameAsync handles POST /sessions/{id}/frames/async. Accepted frames
// get 202, repeated frame ids 200 and a full queue 429.
func (h *SessionsHandler) HandleFrameAsync(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_frame_async"
	var req frameRequest
	if err := decode(r, w, &req); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	ack, err := h.deps.EnqueueFrame(r.Context(), r.PathValue("id"), req.FrameID, req.Landmarks)
	if err != nil {
		writeKind(w, WrapKind(op, kindOf(err), err))
		return
	}
	if ack.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", FrameID: ack.FrameID, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", FrameID: ack.FrameID})
}

// HandleReset handles POST /sessions/{id}/reset.
func (h *SessionsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_session"
	if err := h.deps.Reset(r.Context(), r.PathValue("id")); err != nil {
		writeKind(w, WrapKind(op, kindOf(err), err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSwitch handles POST /sessions/{id}/exercise.
func (h *SessionsHandler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	const op = "api.switch_exercise"
	var req exerciseRequest
	if err := decode(r, w, &req); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeKind(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	info, err := h.deps.SwitchExercise(r.Context(), r.PathValue("id"), strings.TrimSpace(req.Exercise))
	if err != nil {
		writeKind(w, WrapKind(op, kindOf(err), err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleStop handles POST /sessions/{id}/stop and returns the session report.
func (h *SessionsHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	const op = "api.stop_session"
	report, err := h.deps.StopSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeKind(w, WrapKind(op, kindOf(err), err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

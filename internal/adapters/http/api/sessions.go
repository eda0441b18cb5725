package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/view"
)

// maxEventBody bounds the size of an event request.
const maxEventBody = 4 << 10

// SessionHandler serves per-client sessions.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type sessionResponse struct {
	ID      string        `json:"id"`
	Session model.Session `json:"session"`
	Bundle  view.Bundle   `json:"bundle"`
}

// HandleCreate handles POST /api/sessions.
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, b, err := h.deps.CreateSession(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, Session: sess, Bundle: b})
}

// HandleGet handles GET /api/sessions/{id}.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, b, err := h.deps.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Session: sess, Bundle: b})
}

// HandleDelete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.EndSession(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEvent handles POST /api/sessions/{id}/events.
func (h *SessionHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_event"
	var e model.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	sess, b, err := h.deps.Dispatch(r.Context(), r.PathValue("id"), e)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.ID, Session: sess, Bundle: b})
}

// HandleVegaLite handles GET /api/sessions/{id}/vegalite.
func (h *SessionHandler) HandleVegaLite(w http.ResponseWriter, r *http.Request) {
	raw, err := h.deps.SessionVegaLite(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, raw)
}

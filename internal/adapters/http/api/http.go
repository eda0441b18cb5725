// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okian/burden/internal/adapters/render/svgchart"
	"github.com/okian/burden/internal/adapters/repository"
	"github.com/okian/burden/internal/domain/model"
	"github.com/okian/burden/internal/domain/types"
	"github.com/okian/burden/internal/domain/view"
)

// ViewDependencies render stateless views.
type ViewDependencies interface {
	Options() types.Options
	Topology() json.RawMessage
	Render(ctx context.Context, p types.Params, selected string) (view.Bundle, error)
	VegaLite(ctx context.Context, p types.Params, selected string) ([]byte, error)
	Chart(ctx context.Context, w io.Writer, name string, f svgchart.Format, p types.Params, selected string) error
}

// SessionDependencies manage per-client sessions.
type SessionDependencies interface {
	CreateSession(ctx context.Context) (model.Session, view.Bundle, error)
	GetSession(ctx context.Context, id string) (model.Session, view.Bundle, error)
	SessionVegaLite(ctx context.Context, id string) ([]byte, error)
	Dispatch(ctx context.Context, id string, e model.Event) (model.Session, view.Bundle, error)
	EndSession(ctx context.Context, id string) error
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	ViewDependencies
	SessionDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	viewHandler    *ViewHandler
	sessionHandler *SessionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		viewHandler:    NewViewHandler(deps),
		sessionHandler: NewSessionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/options", MetricsMiddleware(s.viewHandler.HandleOptions, "options"))
	mux.HandleFunc("GET /api/view", MetricsMiddleware(s.viewHandler.HandleView, "view"))
	mux.HandleFunc("GET /api/vegalite", MetricsMiddleware(s.viewHandler.HandleVegaLite, "vegalite"))
	mux.HandleFunc("GET /api/charts/{file}", MetricsMiddleware(s.viewHandler.HandleChart, "charts"))
	mux.HandleFunc("GET /api/topology.json", MetricsMiddleware(s.viewHandler.HandleTopology, "topology"))

	mux.HandleFunc("POST /api/sessions", MetricsMiddleware(s.sessionHandler.HandleCreate, "sessions_create"))
	mux.HandleFunc("GET /api/sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleGet, "sessions_get"))
	mux.HandleFunc("DELETE /api/sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleDelete, "sessions_delete"))
	mux.HandleFunc("POST /api/sessions/{id}/events", MetricsMiddleware(s.sessionHandler.HandleEvent, "sessions_events"))
	mux.HandleFunc("GET /api/sessions/{id}/vegalite", MetricsMiddleware(s.sessionHandler.HandleVegaLite, "sessions_vegalite"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before writing the header so an unencodable value becomes a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		raw, _ = json.Marshal(errorResponse{Code: "internal_error", Message: fmt.Sprintf("encode response: %v", err)})
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, append(raw, '\n'))
}

func writeRawJSON(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status code.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, types.ErrInvalidParams),
		errors.Is(err, model.ErrInvalidEvent),
		errors.Is(err, repository.ErrInvalidID),
		errors.Is(err, svgchart.ErrUnknownFormat):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, ErrUnknownChart),
		errors.Is(err, svgchart.ErrUnknownChart):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, svgchart.ErrEmpty):
		writeError(w, http.StatusNotFound, "no_data", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// parseParams reads metric, year and selected from the query string. Missing values
// fall back to the defaults.
func parseParams(r *http.Request) (types.Params, string, error) {
	p := types.DefaultParams()
	q := r.URL.Query()
	if s := q.Get("metric"); s != "" {
		m, err := types.ParseMetric(s)
		if err != nil {
			return types.Params{}, "", err
		}
		p.Metric = m
	}
	if s := q.Get("year"); s != "" {
		y, err := types.ParseYear(s)
		if err != nil {
			return types.Params{}, "", err
		}
		p.Year = y
	}
	return p, strings.TrimSpace(q.Get("selected")), nil
}

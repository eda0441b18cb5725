package api

import (
	"bytes"
	"net/http"
	"path"
	"strings"

	"github.com/okian/burden/internal/adapters/render/svgchart"
)

// ViewHandler serves stateless views.
type ViewHandler struct {
	deps ViewDependencies
}

// NewViewHandler creates a new view handler.
func NewViewHandler(deps ViewDependencies) *ViewHandler {
	return &ViewHandler{deps: deps}
}

// HandleOptions handles GET /api/options.
func (h *ViewHandler) HandleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Options())
}

// HandleTopology handles GET /api/topology.json.
func (h *ViewHandler) HandleTopology(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=86400")
	writeRawJSON(w, http.StatusOK, h.deps.Topology())
}

// HandleView handles GET /api/view.
func (h *ViewHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	p, selected, err := parseParams(r)
	if err != nil {
		writeFailure(w, WrapKind("api.view", ErrBadRequest, err))
		return
	}
	b, err := h.deps.Render(r.Context(), p, selected)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleVegaLite handles GET /api/vegalite.
func (h *ViewHandler) HandleVegaLite(w http.ResponseWriter, r *http.Request) {
	p, selected, err := parseParams(r)
	if err != nil {
		writeFailure(w, WrapKind("api.vegalite", ErrBadRequest, err))
		return
	}
	raw, err := h.deps.VegaLite(r.Context(), p, selected)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, raw)
}

// HandleChart handles GET /api/charts/{bar|trend}.{svg|png}.
func (h *ViewHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart"
	file := r.PathValue("file")
	ext := path.Ext(file)
	name := strings.TrimSuffix(file, ext)
	if name != svgchart.ChartBar && name != svgchart.ChartTrend {
		writeFailure(w, NewKind(op, ErrUnknownChart))
		return
	}
	f, err := svgchart.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, selected, err := parseParams(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	var buf bytes.Buffer
	if err := h.deps.Chart(r.Context(), &buf, name, f, p, selected); err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

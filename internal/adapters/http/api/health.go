package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/vibefeed/pkg/metrics"
)

// readiness is implemented by dependencies that know whether they started.
type readiness interface {
	Started() bool
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps any
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps any) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if rd, ok := h.deps.(readiness); ok && !rd.Started() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": "ok"})
}

// MetricsHandler serves the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}

package api

import (
	"net/http"

	"github.com/okian/shelf/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessProvider reports when the catalog is loaded.
type ReadinessProvider interface {
	Ready() <-chan struct{}
}

// HealthHandler handles liveness, readiness and metrics requests.
type HealthHandler struct {
	readiness ReadinessProvider
	metrics   http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(readiness ReadinessProvider) *HealthHandler {
	return &HealthHandler{
		readiness: readiness,
		metrics:   promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz by serving Prometheus metrics from the
// custom registry.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// HandleReady handles GET /readyz.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, _ *http.Request) {
	select {
	case <-h.readiness.Ready():
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	default:
		writeError(w, http.StatusServiceUnavailable, "not_ready", nil)
	}
}

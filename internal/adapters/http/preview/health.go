package preview

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/facecam/pkg/metrics"
)

// handleHealth handles GET /healthz with the client's Prometheus metrics.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	// Use our custom metrics registry to serve metrics
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// handleStatus handles GET /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Status())
}

package api

import (
	"net/http"

	"github.com/tendjournal/tend/internal/api/respond"
	"github.com/tendjournal/tend/internal/health"
)

// BindServiceHealth returns the /health handler backed by the aggregate
// checker. It reads the cached flag only, so probes never block a request.
func BindServiceHealth(hc *health.ServiceHealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hc.IsHealthy() {
			respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
			return
		}
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
}

package handlers

import (
	"context"
	"net/http"
	"time"
)

// ReadinessChecker reports whether the backing store can serve traffic.
type ReadinessChecker interface {
	Check(ctx context.Context) error
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	readiness ReadinessChecker
	started   time.Time
}

// NewHealthHandlers constructs the probe handlers. A nil checker makes /readyz
// always ready, which suits tests and the in-memory store.
func NewHealthHandlers(readiness ReadinessChecker) *HealthHandlers {
	return &HealthHandlers{
		readiness: readiness,
		started:   time.Now(),
	}
}

// Healthz responds with a simple status payload for liveness monitoring.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.started).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports readiness, failing when the store is unreachable.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.readiness != nil {
		if err := h.readiness.Check(r.Context()); err != nil {
			writeJSONResponse(w, http.StatusServiceUnavailable, map[string]any{
				"status": "unavailable",
				"reason": err.Error(),
			})
			return
		}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"status": "ready"})
}

package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines an interface for checking a dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	users            HealthChecker
	sessions         HealthChecker
	lookupConfigured func() bool
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for users or sessions if they are not wired.
func NewHealthHandler(users, sessions HealthChecker, lookupConfigured func() bool) *HealthHandler {
	return &HealthHandler{
		users:            users,
		sessions:         sessions,
		lookupConfigured: lookupConfigured,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health is a liveness probe endpoint. Always 200 while the process
// serves requests, even when lookups are not configured.
//
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint. Store failures make it 503; a
// missing lookup credential keeps it 200 but reports "degraded" so the
// condition is visible without taking the app out of rotation.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true
	degraded := false

	if h.users != nil {
		if err := h.users.Ping(ctx); err != nil {
			checks["users"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["users"] = "ok"
		}
	} else {
		checks["users"] = "not configured"
	}

	if h.sessions != nil {
		if err := h.sessions.Ping(ctx); err != nil {
			checks["sessions"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["sessions"] = "ok"
		}
	} else {
		checks["sessions"] = "not configured"
	}

	if h.lookupConfigured != nil && !h.lookupConfigured() {
		checks["lookup"] = "not configured"
		degraded = true
	} else {
		checks["lookup"] = "ok"
	}

	status := "ok"
	statusCode := http.StatusOK
	switch {
	case !healthy:
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	case degraded:
		status = "degraded"
	}

	writeJSON(w, statusCode, HealthResponse{
		Status: status,
		Checks: checks,
	})
}

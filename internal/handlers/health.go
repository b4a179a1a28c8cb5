package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthChecker handles health check requests
type HealthChecker struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// NewHealthChecker creates a health checker over named dependencies. Nil entries are ignored.
func NewHealthChecker(deps map[string]Pinger) *HealthChecker {
	filtered := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			filtered[name] = p
		}
	}
	return &HealthChecker{deps: filtered, timeout: 5 * time.Second}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health handles the /health liveness endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// HealthCheck handles the /healthz endpoint. ?mode=extended pings every dependency.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		writeJSON(w, http.StatusOK, response)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	response.Checks = make(map[string]string, len(names))
	for _, name := range names {
		if err := h.deps[name].Ping(ctx); err != nil {
			response.Status = "unhealthy"
			response.Checks[name] = "unhealthy: " + sanitizeErrorMessage(err.Error())
			continue
		}
		response.Checks[name] = "healthy"
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, response)
}

package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"content-summarizer/internal/resilience/circuitbreaker"

	"github.com/sony/gobreaker"
)

// Pinger is implemented by dependencies that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the state of the summarizer backend, the page
// fetcher and the summary cache. Nil dependencies are reported as
// "not_configured".
type HealthHandler struct {
	Summarizer *circuitbreaker.CircuitBreaker
	Fetcher    *circuitbreaker.CircuitBreaker
	Cache      Pinger
	Version    string
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version,omitempty"`
}

// CheckStatus represents the status of an individual health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

const (
	statusHealthy       = "healthy"
	statusDegraded      = "degraded"
	statusUnhealthy     = "unhealthy"
	statusNotConfigured = "not_configured"
)

// ServeHTTP returns 200 unless a check is unhealthy, in which case 503.
// "degraded" is a warning state; the service still answers requests.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{
		// An open summarizer circuit fails every summary request.
		"summarizer": breakerCheck(h.Summarizer, statusUnhealthy),
		// An open fetch circuit only affects URL input.
		"page_fetch": breakerCheck(h.Fetcher, statusDegraded),
		"cache":      h.checkCache(ctx),
	}

	status := statusHealthy
	statusCode := http.StatusOK
	for _, c := range checks {
		if c.Status == statusUnhealthy {
			status = statusUnhealthy
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Warn("health: failed to encode response", slog.Any("error", err))
	}
}

// checkCache pings the summary cache. Cache failures only cost latency,
// so an unreachable cache is reported as degraded.
func (h *HealthHandler) checkCache(ctx context.Context) CheckStatus {
	if h.Cache == nil {
		return CheckStatus{Status: statusNotConfigured}
	}
	if err := h.Cache.Ping(ctx); err != nil {
		return CheckStatus{Status: statusDegraded, Message: err.Error()}
	}
	return CheckStatus{Status: statusHealthy}
}

func breakerCheck(cb *circuitbreaker.CircuitBreaker, whenOpen string) CheckStatus {
	if cb == nil {
		return CheckStatus{Status: statusNotConfigured}
	}

	counts := cb.Counts()
	details := map[string]any{
		"name":                  cb.Name(),
		"state":                 cb.State().String(),
		"requests":              counts.Requests,
		"total_failures":        counts.TotalFailures,
		"consecutive_failures":  counts.ConsecutiveFailures,
		"consecutive_successes": counts.ConsecutiveSuccesses,
	}

	switch cb.State() {
	case gobreaker.StateOpen:
		return CheckStatus{Status: whenOpen, Message: "circuit breaker open", Details: details}
	case gobreaker.StateHalfOpen:
		return CheckStatus{Status: statusDegraded, Message: "circuit breaker half-open", Details: details}
	default:
		return CheckStatus{Status: statusHealthy, Details: details}
	}
}

// ReadyHandler handles Kubernetes readiness probe requests.
// The service is not ready while the summarizer circuit is open.
type ReadyHandler struct {
	Summarizer *circuitbreaker.CircuitBreaker
}

// ServeHTTP returns 200 "ready" or 503 with the reason.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Summarizer != nil && h.Summarizer.IsOpen() {
		http.Error(w, "summarizer unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		slog.Warn("ready: failed to write response", slog.Any("error", err))
	}
}

// LiveHandler handles Kubernetes liveness probe requests.
type LiveHandler struct{}

// ServeHTTP always returns 200 OK while the process can serve requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Warn("alive: failed to write response", slog.Any("error", err))
	}
}

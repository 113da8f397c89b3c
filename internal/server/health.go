package server

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus represents the overall health of the system
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus represents the health of an individual component
type ComponentStatus string

const (
	ComponentStatusUp       ComponentStatus = "up"
	ComponentStatusDown     ComponentStatus = "down"
	ComponentStatusDegraded ComponentStatus = "degraded"
)

// Health represents the complete health check response
type Health struct {
	Status     HealthStatus               `json:"status"`
	Service    string                     `json:"service"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents the health of a single system component
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms,omitempty"`
}

// storeSlowAfter marks the store degraded when a ping takes longer.
const storeSlowAfter = time.Second

// HandleHealth reports whether the submission store is reachable.
// Unhealthy answers 503 so load balancers stop routing here.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := Health{
		Service:    s.branding.ServiceName,
		Timestamp:  time.Now().UTC(),
		Version:    s.version,
		Components: map[string]ComponentHealth{"store": s.checkStoreHealth(r.Context())},
	}
	if s.notifier != nil {
		health.Components["webhook"] = s.checkWebhookHealth()
	}
	health.Status = determineOverallHealth(health.Components)

	status := http.StatusOK
	if health.Status == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, r, status, health)
}

func (s *Server) checkStoreHealth(ctx context.Context) ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := s.store.Ping(ctx); err != nil {
		return ComponentHealth{
			Status:  ComponentStatusDown,
			Message: "store ping failed: " + err.Error(),
		}
	}
	latency := time.Since(start)

	if latency > storeSlowAfter {
		return ComponentHealth{
			Status:    ComponentStatusDegraded,
			Message:   "store latency high",
			LatencyMs: float64(latency.Milliseconds()),
		}
	}
	return ComponentHealth{
		Status:    ComponentStatusUp,
		Message:   "store healthy",
		LatencyMs: float64(latency.Microseconds()) / 1000,
	}
}

// checkWebhookHealth reports the webhook endpoint degraded while its
// circuit is open. Lost notifications never make the service unhealthy.
func (s *Server) checkWebhookHealth() ComponentHealth {
	if state := s.notifier.breaker.State(); state != StateClosed {
		return ComponentHealth{Status: ComponentStatusDegraded, Message: "webhook circuit " + state.String()}
	}
	return ComponentHealth{Status: ComponentStatusUp, Message: "webhook healthy"}
}

// determineOverallHealth calculates overall health from component statuses
func determineOverallHealth(components map[string]ComponentHealth) HealthStatus {
	var down, degraded int
	for _, c := range components {
		switch c.Status {
		case ComponentStatusDown:
			down++
		case ComponentStatusDegraded:
			degraded++
		}
	}

	if down > 0 {
		return HealthStatusUnhealthy
	}
	if degraded > 0 {
		return HealthStatusDegraded
	}
	return HealthStatusHealthy
}

package handlers

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/dltrack/internal/app"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	registry *app.Registry
	ready    *atomic.Bool
}

// NewHealthHandler creates a new health handler. A nil ready flag means
// the server is ready as soon as it serves.
func NewHealthHandler(registry *app.Registry, ready *atomic.Bool) *HealthHandler {
	if ready == nil {
		ready = &atomic.Bool{}
		ready.Store(true)
	}
	return &HealthHandler{
		registry: registry,
		ready:    ready,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Downloads int    `json:"downloads"`
	Observers int    `json:"observers"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   Version,
		Downloads: h.registry.Len(),
		Observers: h.registry.Notifier().Subscribers(),
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "registry not loaded",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bot608/duocortex-accounts-page/internal/application/services"
	"github.com/bot608/duocortex-accounts-page/internal/domain/session"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	sessions *services.SessionService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(sessions *services.SessionService) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

// Health reports overall service health.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"session_state": h.sessions.State(),
	})
}

// Live reports process liveness.
// GET /live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready reports whether the session controller has finished initializing.
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	state := h.sessions.State()
	if state == session.StateUninitialized || state == session.StateInitializing {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "initializing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

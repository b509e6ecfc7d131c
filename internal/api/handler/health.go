package handler

import (
	"net/http"

	"github.com/DiegoPama01/FrameForge-sub000/internal/store"
	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	session *store.Session
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(session *store.Session) *HealthHandler {
	return &HealthHandler{session: session}
}

// Health returns the health status of the service, including whether the
// worker push channel is still delivering live updates.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status": "ok",
	}
	if h.session != nil {
		if err := h.session.Err(); err != nil {
			resp["status"] = "degraded"
			resp["push_channel"] = err.Error()
		} else {
			resp["push_channel"] = "live"
		}
	}
	c.JSON(http.StatusOK, resp)
}

package handler

import (
	"net/http"

	"github.com/DiegoPama01/FrameForge-sub000/internal/domain"
	"github.com/DiegoPama01/FrameForge-sub000/internal/store"
	"github.com/gin-gonic/gin"
)

// StateHandler exposes the synchronized pipeline state over HTTP.
type StateHandler struct {
	store *store.Store
}

// NewStateHandler creates a new state handler.
func NewStateHandler(s *store.Store) *StateHandler {
	return &StateHandler{store: s}
}

// State returns the full synchronized snapshot in one response.
func (h *StateHandler) State(c *gin.Context) {
	resp := gin.H{
		"projects":  h.store.Projects(),
		"jobs":      h.store.Jobs(),
		"workflows": h.store.Workflows(),
		"assets":    h.store.Assets(),
		"logs":      h.store.Logs(),
	}
	if selected, ok := h.store.Selected(); ok {
		resp["selected"] = selected
	}
	c.JSON(http.StatusOK, resp)
}

// ListProjects returns all cached projects.
func (h *StateHandler) ListProjects(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"projects": h.store.Projects()})
}

// GetProject returns one cached project by id.
func (h *StateHandler) GetProject(c *gin.Context) {
	p, ok := h.store.Project(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListJobs returns all cached jobs.
func (h *StateHandler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.store.Jobs()})
}

// ListWorkflows returns all cached workflow templates.
func (h *StateHandler) ListWorkflows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"workflows": h.store.Workflows()})
}

// ListLogs returns the log ring, optionally filtered by project_id.
func (h *StateHandler) ListLogs(c *gin.Context) {
	if projectID := c.Query("project_id"); projectID != "" {
		c.JSON(http.StatusOK, gin.H{"logs": h.store.LogsForProject(projectID)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": h.store.Logs()})
}

// Refresh forces a full resynchronization against the worker.
func (h *StateHandler) Refresh(c *gin.Context) {
	if err := h.store.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

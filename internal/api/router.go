package api

import (
	"github.com/DiegoPama01/FrameForge-sub000/internal/api/handler"
	"github.com/DiegoPama01/FrameForge-sub000/internal/api/middleware"
	"github.com/DiegoPama01/FrameForge-sub000/internal/config"
	"github.com/DiegoPama01/FrameForge-sub000/internal/store"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	s *store.Store,
	session *store.Session,
	cfg *config.ConsoleConfig,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler(session)
	stateHandler := handler.NewStateHandler(s)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Full snapshot
		v1.GET("/state", stateHandler.State)

		// Projects
		v1.GET("/projects", stateHandler.ListProjects)
		v1.GET("/projects/:id", stateHandler.GetProject)

		// Jobs and workflows
		v1.GET("/jobs", stateHandler.ListJobs)
		v1.GET("/workflows", stateHandler.ListWorkflows)

		// Logs
		v1.GET("/logs", stateHandler.ListLogs)

		// Resync
		v1.POST("/refresh", stateHandler.Refresh)
	}

	return r
}

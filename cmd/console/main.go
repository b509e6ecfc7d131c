package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DiegoPama01/FrameForge-sub000/internal/api"
	"github.com/DiegoPama01/FrameForge-sub000/internal/config"
	"github.com/DiegoPama01/FrameForge-sub000/internal/gateway"
	"github.com/DiegoPama01/FrameForge-sub000/internal/logger"
	"github.com/DiegoPama01/FrameForge-sub000/internal/repository"
	"github.com/DiegoPama01/FrameForge-sub000/internal/store"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.SetDefaultLogger(logger.NewDefault())
	defer logger.Sync()

	ctx := context.Background()

	// Initialize local snapshot database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	snapshots := repository.NewSnapshotRepository(db)

	// Initialize worker gateway
	gw := gateway.NewClient(&gateway.ClientConfig{
		BaseURL: cfg.Worker.BaseURL,
		Token:   cfg.Worker.Token,
		Timeout: cfg.Worker.Timeout,
	})

	// Initialize state store with snapshot persistence
	st := store.New(gw, store.WithPersister(snapshots))

	// Open the sync session: initial refresh, log seeding, push channel
	session, err := store.OpenSession(ctx, st, gw, &store.SessionConfig{
		PollInterval: cfg.Sync.PollInterval,
		LogSeedLimit: cfg.Sync.LogSeedLimit,
	})
	if err != nil {
		// Worker unreachable: serve the last persisted snapshot read-only
		// until a manual refresh succeeds.
		logger.Error("Failed to open sync session, falling back to persisted snapshot: %v", err)
		warmFromSnapshot(ctx, st, snapshots)
	}

	// Setup router
	router := api.SetupRouter(st, session, &cfg.Console)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Console.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting console server on port %d (mode=%s, worker=%s)",
			cfg.Console.Port, cfg.Console.Mode, cfg.Worker.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down console...")

	// Stop live updates before the HTTP surface so late push events
	// cannot land in a half-torn-down store.
	if session != nil {
		session.Close()
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Console exited")
}

// warmFromSnapshot loads the persisted state into the store. Load errors
// only mean an empty console until the worker comes back.
func warmFromSnapshot(ctx context.Context, st *store.Store, snapshots *repository.SnapshotRepository) {
	projects, err := snapshots.LoadProjects(ctx)
	if err != nil {
		logger.Error("Loading persisted projects failed: %v", err)
		return
	}
	jobs, err := snapshots.LoadJobs(ctx)
	if err != nil {
		logger.Error("Loading persisted jobs failed: %v", err)
		return
	}
	workflows, err := snapshots.LoadWorkflows(ctx)
	if err != nil {
		logger.Error("Loading persisted workflows failed: %v", err)
		return
	}
	logs, err := snapshots.LoadLogs(ctx)
	if err != nil {
		logger.Error("Loading persisted logs failed: %v", err)
		return
	}
	st.Warm(projects, jobs, workflows, logs)
	logger.Info("Serving persisted snapshot: %d projects, %d jobs", len(projects), len(jobs))
}

// Package main provides a local HTTP server for development and testing.
// It exposes score estimation, stored analyses and goal simulation sessions
// to the frontend.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"fico-simulator/internal/config"
	"fico-simulator/internal/services/database"
	"fico-simulator/internal/services/simulator"
	"fico-simulator/internal/utils"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.Named("main")

	// Initialize database
	var server *Server
	sessions := simulator.NewRegistry(cfg.SessionTTL(), simulator.WithLogger(utils.Named("sessions")))

	db, err := database.New(cfg)
	if err != nil {
		logger.Warn("Could not connect to database, analyses will not be persisted", utils.Error(err))
		server = NewServer(nil, nil, sessions, cfg.Stage)
	} else {
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to apply schema", utils.Error(err))
		}
		cancel()

		repo := database.NewAnalysisRepository(db)
		server = NewServer(db, repo, sessions, cfg.Stage)

		purger, err := startRetentionPurge(cfg, repo)
		if err != nil {
			logger.Fatal("Failed to schedule retention purge", utils.Error(err))
		}
		if purger != nil {
			defer purger.Stop()
		}
	}

	if err := sessions.StartSweeper(cfg.SessionSweepSchedule); err != nil {
		logger.Fatal("Failed to start session sweeper", utils.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("FICO simulator API server listening",
			utils.String("addr", httpServer.Addr),
			utils.String("stage", cfg.Stage))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", utils.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", utils.Error(err))
	}
	sessions.Stop(ctx)
}

// retentionStore deletes old analyses.
type retentionStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// startRetentionPurge schedules deletion of analyses older than the
// configured retention. It returns nil when retention is disabled.
func startRetentionPurge(cfg *config.Config, store retentionStore) (*cron.Cron, error) {
	retention := cfg.AnalysisRetention()
	if retention <= 0 {
		return nil, nil
	}

	logger := utils.Named("retention")
	c := cron.New()
	_, err := c.AddFunc(cfg.RetentionSchedule, func() {
		purgeAnalyses(context.Background(), store, retention)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Info("Analysis retention purge scheduled",
		utils.String("schedule", cfg.RetentionSchedule),
		utils.Duration("retention", retention))
	return c, nil
}

// purgeAnalyses runs one retention pass.
func purgeAnalyses(ctx context.Context, store retentionStore, retention time.Duration) int64 {
	logger := utils.Named("retention")

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := store.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		logger.Error("Retention purge failed", utils.Error(err))
		return 0
	}
	if n > 0 {
		logger.Info("Purged expired analyses", utils.Int64("deleted", n))
	}
	return n
}

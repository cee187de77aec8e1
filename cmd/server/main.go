package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cesargomez89/cratedigger/internal/app"
	"github.com/cesargomez89/cratedigger/internal/config"
	httpapp "github.com/cesargomez89/cratedigger/internal/http"
	"github.com/cesargomez89/cratedigger/internal/logger"
	"github.com/cesargomez89/cratedigger/internal/worker"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	rt, err := app.NewRuntime(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	w := worker.NewWorker(rt.DB, rt.Crawler, cfg.PollInterval, appLogger)
	w.Start()
	defer w.Stop()

	if cfg.RequeueSchedule != "" {
		job, err := worker.NewRequeueJob(rt.Labels, cfg.RequeueSchedule, cfg.RequeueCooldown, appLogger)
		if err != nil {
			appLogger.Error("Failed to schedule requeue job", "error", err)
			os.Exit(1)
		}
		job.Start()
		defer job.Stop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := httpapp.NewHandler(rt.Labels, rt.Crawler, rt.Playback, rt.Catalog, cfg.DefaultOwner, appLogger)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}
}

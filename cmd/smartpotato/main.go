package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/smartpotato/smartpotato/internal/adapter/httpapi"
	"github.com/smartpotato/smartpotato/internal/adapter/memstore"
	"github.com/smartpotato/smartpotato/internal/adapter/openrouter"
	"github.com/smartpotato/smartpotato/internal/adapter/otelx"
	"github.com/smartpotato/smartpotato/internal/adapter/ristretto"
	"github.com/smartpotato/smartpotato/internal/adapter/state"
	"github.com/smartpotato/smartpotato/internal/adapter/ws"
	"github.com/smartpotato/smartpotato/internal/config"
	"github.com/smartpotato/smartpotato/internal/logger"
	"github.com/smartpotato/smartpotato/internal/port/llm"
	"github.com/smartpotato/smartpotato/internal/resilience"
	"github.com/smartpotato/smartpotato/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"model", cfg.OpenRouter.Model,
	)

	// --- Infrastructure ---

	visited, err := state.NewVisitedFlag(cfg.State.Dir)
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}

	groupCache, err := ristretto.New(cfg.Tidy.CacheSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer groupCache.Close()

	metrics, err := otelx.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	hub := ws.NewHub()
	store := memstore.New(hub)

	var ai llm.Service
	if cfg.OpenRouter.UseMock() {
		slog.Warn("no OpenRouter API key configured, using mock adapter")
		ai = openrouter.NewMock(cfg.Orchestrator.MockLatency)
	} else {
		client := openrouter.NewClient(cfg.OpenRouter.BaseURL, cfg.OpenRouter.APIKey, cfg.OpenRouter.Referer, cfg.OpenRouter.Model)
		client.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
		client.SetMetrics(metrics)
		ai = client
	}

	// --- Services ---

	projectSvc := service.NewProjectService(store)
	orch := service.NewOrchestrator(store, ai, hub, projectSvc, cfg.Orchestrator.TitleDebounce)
	orch.SetMetrics(metrics)
	tidySvc := service.NewTidyService(store, ai, groupCache, hub, cfg.Tidy.CacheTTL)
	tidySvc.SetMetrics(metrics)
	reminderSvc := service.NewReminderService(store, orch, hub)
	reminderSvc.SetMetrics(metrics)

	// --- HTTP ---

	r := chi.NewRouter()
	r.Use(otelx.HTTPMiddleware(cfg.Logging.Service))
	r.Use(httpapi.RequestID)
	r.Use(httpapi.Logger)
	r.Use(httpapi.CORS(cfg.Server.CORSOrigin))
	r.Use(httpapi.SecurityHeaders)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	handlers := httpapi.NewHandlers(orch, projectSvc, tidySvc, reminderSvc, store, visited, hub)
	handlers.MountRoutes(r)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Let in-flight title and grouping jobs finish.
	orch.Flush()
	tidySvc.Flush()
	return nil
}

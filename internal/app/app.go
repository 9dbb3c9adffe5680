// Package app wires configuration, logging, observability, the
// ingestion pipeline and the HTTP surface into one runnable server.
package app

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
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"pontoscli/internal/config"
	"pontoscli/internal/files"
	"pontoscli/internal/infrastructure"
	custommiddleware "pontoscli/internal/middleware"
	"pontoscli/internal/services"
	handlers "pontoscli/internal/transport/http"
	ws "pontoscli/internal/websocket"
)

// Application represents the main application container.
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	DataService   *services.DataService
	WebSocketHub  *ws.Hub
	OTelProviders *infrastructure.OTelProviders
	Logger        *slog.Logger
}

// NewApplication creates a new application instance with dependency
// injection.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	pipelineMetrics, err := infrastructure.NewPipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	catalog, err := config.LoadCatalog(cfg.Paths.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load source catalog: %w", err)
	}
	logger.Info("source catalog loaded",
		slog.Int("folders", len(catalog)),
		slog.Int("files", catalog.Len()))

	hub := ws.NewHub(logger)

	dataService := services.NewDataService(cfg, services.Dependencies{
		Store:   files.NewLocalStore(cfg.Paths.DataDir, logger),
		Catalog: catalog,
		Hub:     hub,
		Tracer:  otelProviders.Tracer,
		Metrics: services.NewPipelineMetricsRecorder(pipelineMetrics),
	}, logger)

	app := &Application{
		Config:        cfg,
		DataService:   dataService,
		WebSocketHub:  hub,
		OTelProviders: otelProviders,
		Logger:        logger,
	}
	app.Router = app.setupRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// setupRouter builds the middleware chain and mounts all routes.
func (a *Application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.StructuredLogger(a.Logger))
	r.Use(custommiddleware.Recoverer(a.Logger))
	if a.Config.Server.RateLimit.Enabled {
		limiter := custommiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	gate := custommiddleware.NewAPIKeyGate(a.Config.Auth.APIKey, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", handlers.NewHealthHandler(a.DataService).Routes())

		r.Group(func(r chi.Router) {
			r.Use(gate.Handler)
			r.Mount("/data", handlers.NewDataHandler(a.DataService, a.Logger).Routes())
		})
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}
	r.Get("/ws", ws.ServeWS(a.WebSocketHub, a.Logger))

	return r
}

// Run starts the hub and HTTP server and blocks until shutdown.
func (a *Application) Run() error {
	go a.WebSocketHub.Run()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	return a.Shutdown()
}

// Shutdown drains the server, stops the hub and flushes telemetry.
func (a *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}

	a.WebSocketHub.Stop()

	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	a.Logger.Info("shutdown complete")
	return nil
}

// WaitForReady blocks until the first aggregate loads or the context
// expires. Used by integration tests.
func (a *Application) WaitForReady(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if _, err := a.DataService.Aggregate(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

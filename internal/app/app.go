package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"covidpulse/internal/config"
	"covidpulse/internal/dataprocessing"
	"covidpulse/internal/errors"
	"covidpulse/internal/infrastructure"
	customMiddleware "covidpulse/internal/middleware"
	"covidpulse/internal/services"
	handlers "covidpulse/internal/transport/http"
	"covidpulse/internal/websocket"
	"covidpulse/pkg/contracts"
)

// Application is the web service container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics
	CovidService  *services.CovidService
	HealthService *services.HealthService
	Hub           *websocket.Hub

	errorHandler *errors.ErrorHandler
}

// NewApplication wires services, handlers and the HTTP server for cfg.
// The dataset is not loaded until Run.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	paths, err := config.NewPaths(cfg.Report, cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution()

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.NewPipelineMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	covid := services.NewCovidService(cfg.Report,
		dataprocessing.NewLoader(cfg.Report.FetchTimeout, logger), logger)

	hub := websocket.NewHub(logger)
	covid.SetNotifier(hub)

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		CovidService:  covid,
		HealthService: services.NewHealthService(covid, paths.OutputDir, logger),
		Hub:           hub,
		errorHandler:  errors.NewErrorHandler(logger, cfg.Logging.Development),
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

// setupRouter builds the chi router.
// Middleware order: RequestID → RealIP → OTel → Errors → SecurityHeaders → RateLimit
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(errors.NewErrorMiddleware(a.errorHandler, a.Logger).Handler)
	r.Use(customMiddleware.SecurityHeaders)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get(config.HealthEndpoint, healthHandler.HealthCheck)
	r.Get(config.HealthEndpoint+"/ready", healthHandler.ReadinessCheck)
	r.Get(config.HealthEndpoint+"/live", healthHandler.LivenessCheck)

	// Prometheus scrapes are not rate limited
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	r.Handle(config.WebSocketEndpoint, websocket.NewHandler(a.Hub, a.Logger))

	r.Route(config.APIBasePath, func(r chi.Router) {
		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.errorHandler, a.Logger).Handler)
		}
		r.Get("/version", healthHandler.Version)
		r.Mount("/", handlers.NewCovidHandler(a.CovidService, a.Logger, a.errorHandler).Routes())
	})

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
// The dataset is loaded in the background; until it is, data routes answer
// 503 and readiness reports not_ready.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening", slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.Hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.refreshLoop(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// refreshLoop loads the dataset once and then every ReloadInterval, if set.
// Load failures are logged; the last good snapshot keeps serving.
func (a *Application) refreshLoop(ctx context.Context) {
	load := func() {
		loadCtx := infrastructure.WithTraceID(ctx, infrastructure.GenerateTraceID())
		if err := a.CovidService.Load(loadCtx); err != nil && ctx.Err() == nil {
			a.Logger.ErrorContext(loadCtx, "Dataset refresh failed", slog.String("error", err.Error()))
		}
	}

	load()
	if a.Config.Server.ReloadInterval <= 0 {
		return
	}

	ticker := time.NewTicker(a.Config.Server.ReloadInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			load()
		}
	}
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

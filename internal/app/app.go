package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"voltweb/internal/config"
	apierrors "voltweb/internal/errors"
	"voltweb/internal/infrastructure"
	customMiddleware "voltweb/internal/middleware"
	"voltweb/internal/services"
	handlers "voltweb/internal/transport/http"
	"voltweb/internal/validation"
	ws "voltweb/internal/websocket"
	"voltweb/pkg/contracts"
)

// AppName is the human readable application name
const AppName = "voltweb - voltammetry plotting and export"

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(contracts.Version))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config             *config.Config
	Paths              *config.Paths
	Router             *chi.Mux
	Server             *http.Server
	WebSocketHub       *ws.Hub
	VoltammetryService *services.VoltammetryService
	HealthService      *services.HealthService
	Metrics            *infrastructure.BusinessMetrics
	OTelProviders      *infrastructure.OTelProviders
	Logger             *slog.Logger

	errorHandler *apierrors.ErrorHandler
	listener     net.Listener
	startTime    time.Time
}

// NewApplication loads configuration from the environment and builds the
// application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger, infrastructure.DefaultOTelConfig())
}

// New wires every component from cfg. otelCfg may be nil for the defaults.
func New(cfg *config.Config, logger *slog.Logger, otelCfg *infrastructure.OTelConfig) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("build_id", BuildID))

	paths, err := cfg.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		startTime:     time.Now(),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}
	a.Metrics = metrics

	if a.OTelProviders.Meter != nil {
		if err := infrastructure.RegisterRuntimeGauges(a.OTelProviders.Meter, a.startTime); err != nil {
			return fmt.Errorf("failed to register runtime gauges: %w", err)
		}
	}

	wsMetrics, err := ws.NewMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create websocket metrics: %w", err)
	}

	hub := ws.NewHub(a.Logger,
		ws.WithMetrics(wsMetrics),
		ws.WithKeepalive(a.Config.WebSocket))
	hub.Start()
	a.WebSocketHub = hub

	a.VoltammetryService = services.NewVoltammetryService(a.Config, a.Logger,
		services.WithEventSink(ws.NewEventSink(hub)),
		services.WithNotifier(hub),
		services.WithMetrics(metrics))

	a.HealthService = services.NewHealthService(
		contracts.Version,
		BuildTime,
		BuildID,
		a.Paths,
		hub,
		a.Logger,
	)

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware shared with the websocket route, which must not
	// have its ResponseWriter wrapped
	r.Use(customMiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(apierrors.RecoveryMiddleware(a.errorHandler))

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Handle(config.WebSocketEndpoint, ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.allowedOrigins(), a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
				a.errorHandler,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.errorHandler))
		r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxUploadBytes))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Get("/stats", healthHandler.Stats)

		uploads := validation.NewFileValidator(validation.UploadLimits{
			MaxFiles:     a.Config.Server.MaxFiles,
			MaxFileBytes: a.Config.Server.MaxFileBytes,
		}, a.Logger)
		handlers.NewVoltammetryHandler(a.VoltammetryService, uploads, a.Logger, a.errorHandler).RegisterRoutes(r)
	})
}

// allowedOrigins returns the cross-origin callers accepted for CORS and
// websocket upgrades. Same-host websocket clients are always accepted.
func (a *Application) allowedOrigins() []string {
	if !a.Config.Security.EnableCORS {
		return nil
	}
	return a.Config.Security.AllowedOrigins
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			handlers.SkippedFilesHeader,
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Addr returns the bound listener address once Start has run
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start binds the listener and serves in the background. Serve errors other
// than a clean shutdown are delivered on the returned channel.
func (a *Application) Start(ctx context.Context) (<-chan error, error) {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = listener

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			errCh <- err
		}
		close(errCh)
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://%s", a.Addr())))
	return errCh, nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		shutdownErr = fmt.Errorf("server shutdown error: %w", err)
	}

	// Hijacked websocket connections are not tracked by Shutdown
	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return shutdownErr
}

// Run serves until ctx is cancelled, SIGINT or SIGTERM arrives, or the
// server fails, then shuts down
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh, err := a.Start(ctx)
	if err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Received shutdown signal")
	case serveErr = <-errCh:
	}

	if err := a.Stop(context.Background()); err != nil {
		return err
	}
	return serveErr
}

// performStartupHealthCheck verifies the writable directories
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	validator := validation.NewFileValidator(validation.UploadLimits{}, a.Logger)

	var problems []error
	for name, dir := range map[string]string{
		"exports": a.Paths.ExportsDir,
		"logs":    a.Paths.LogsDir,
	} {
		if err := validator.ValidateOutputDirectory(dir); err != nil {
			problems = append(problems, fmt.Errorf("%s directory: %w", name, err))
		}
	}

	if len(problems) > 0 {
		return errors.Join(problems...)
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}

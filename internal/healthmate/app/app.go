package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/healthmate/server/internal/healthmate/http"
	"github.com/healthmate/server/internal/healthmate/inference"
	"github.com/healthmate/server/internal/healthmate/notify"
	"github.com/healthmate/server/internal/healthmate/service"
	"github.com/healthmate/server/internal/healthmate/store"
	"github.com/healthmate/server/internal/healthmate/store/drivers/postgres"
	"github.com/healthmate/server/internal/healthmate/store/drivers/sqlite"
	"github.com/healthmate/server/pkg/cryptox"
	"github.com/healthmate/server/pkg/httpx"
	"github.com/healthmate/server/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application holds the HealthMate server and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	registry *prometheus.Registry
	tokens   *service.TokenIssuer
	notifier service.Notifier

	// Services
	accountService   *service.AccountService
	diagnosisService *service.DiagnosisService
	reaperService    *service.ReaperService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New validates cfg and builds an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "healthmate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	tokens, err := InitTokenIssuer(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	app.tokens = tokens

	if err := app.initNotifier(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler exposes the fully wired router.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.reaperService.Start()

	app.logger.Info("healthmate starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
		"notifier", app.cfg.Notifier,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.reaperService.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops the reaper and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down healthmate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.reaperService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("healthmate stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initNotifier() error {
	switch app.cfg.Notifier {
	case NotifierSMTP:
		n, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUsername,
			Password: app.cfg.SMTPPassword,
			From:     app.cfg.SMTPFrom,
		}, app.cfg.OTPValidity)
		if err != nil {
			return fmt.Errorf("failed to initialize smtp notifier: %w", err)
		}
		app.notifier = n
		app.logger.Info("smtp notifier enabled", "host", app.cfg.SMTPHost, "port", app.cfg.SMTPPort)
	default:
		app.notifier = &notify.LogNotifier{Logger: app.logger}
		app.logger.Warn("log notifier enabled, OTPs are written to the log")
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	metrics, err := service.NewMetrics(app.registry)
	if err != nil {
		return fmt.Errorf("failed to register service metrics: %w", err)
	}

	app.accountService = &service.AccountService{
		Store:         app.db,
		Tokens:        app.tokens,
		Notifier:      app.notifier,
		Policy:        service.NewPasswordPolicy(app.cfg.PasswordMinScore),
		Metrics:       metrics,
		OTPValidity:   app.cfg.OTPValidity,
		OTPAttempts:   app.cfg.OTPMaxAttempts,
		NotifyTimeout: app.cfg.NotifyTimeout,
		StoreTimeout:  app.cfg.StoreTimeout,
	}

	if app.cfg.InferenceURL == "" {
		app.logger.Warn("INFERENCE_URL not set, diagnosis requests will fail")
	}
	app.diagnosisService = &service.DiagnosisService{
		Store:        app.db,
		Inference:    inference.NewClient(app.cfg.InferenceURL, app.cfg.InferenceAPIKey, app.cfg.InferenceTimeout),
		StoreTimeout: app.cfg.StoreTimeout,
	}

	app.reaperService = service.NewReaperService(
		app.db,
		app.logger,
		app.cfg.CleanupInterval,
		app.cfg.OTPValidity,
	)
	app.reaperService.Metrics = metrics

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	httpMetrics, err := httpx.NewHTTPMetrics(httpx.HTTPMetricsOptions{Registerer: app.registry})
	if err != nil {
		return fmt.Errorf("failed to register http metrics: %w", err)
	}

	router := httpapi.NewRouter(
		app.tokens,
		BuildVersion,
		app.db,
		app.logger,
		httpMetrics,
		app.registry,
	)

	router.AccountService = app.accountService
	router.DiagnosisService = app.diagnosisService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}

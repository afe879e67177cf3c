package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bot608/duocortex-accounts-page/config"
	"github.com/bot608/duocortex-accounts-page/internal/application"
	apphttp "github.com/bot608/duocortex-accounts-page/internal/interfaces/http"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, logWriter, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()
	logger.SetDefault(log)

	log.Info("Starting accounts client...",
		logger.Component("main"),
		logger.String("backend", cfg.Backend.BaseURL),
	)

	// Initialize application
	deps, err := application.NewDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	svcs := application.NewServices(deps, cfg, log)

	// Restore any stored session before serving traffic. A failure here is
	// a clean unauthenticated start, not a fatal error.
	if err := svcs.Session.Initialize(ctx); err != nil {
		log.Warn("session restore failed", logger.Component("main"), logger.Error(err))
	}
	log.Info("Session initialized",
		logger.Component("main"),
		logger.SessionState(string(svcs.Session.State())),
	)

	// Start log cleanup job if enabled
	if logWriter != nil {
		logWriter.StartCleanupJob(ctx)
		log.Info("Log cleanup job started",
			logger.Component("main"),
			logger.Int("retention_days", cfg.Logging.RetentionDays),
		)
	}

	// Create and start server
	server := newServer(cfg, svcs, log, logWriter)
	return startServer(server, log)
}

func initLogger(cfg *config.Config) (logger.Logger, *logger.SQLiteWriter, error) {
	logCfg := logger.Config{
		Level:           cfg.Logging.Level,
		Environment:     cfg.Logging.Environment,
		EnableConsole:   true,
		EnableStorage:   cfg.Logging.StoreEnabled,
		DBPath:          cfg.Logging.DBPath,
		AsyncBufferSize: cfg.Logging.BufferSize,
		RetentionDays:   cfg.Logging.RetentionDays,
		FlushInterval:   100 * time.Millisecond,
		BatchSize:       100,
	}

	var writer *logger.SQLiteWriter
	var err error

	if logCfg.EnableStorage {
		writer, err = logger.NewSQLiteWriter(logCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create SQLite log writer: %w", err)
		}
	}

	log, err := logger.New(logCfg, writer)
	if err != nil {
		if writer != nil {
			writer.Close()
		}
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, writer, nil
}

func newServer(
	cfg *config.Config,
	svcs *application.Services,
	log logger.Logger,
	logWriter *logger.SQLiteWriter,
) *http.Server {
	routerDeps := &apphttp.RouterDeps{
		SessionService: svcs.Session,
		WalletService:  svcs.Wallet,
		Logger:         log,
		LogWriter:      logWriter,
	}

	router := apphttp.NewRouter(cfg, routerDeps)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func startServer(server *http.Server, log logger.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		log.Info("Server listening",
			logger.Component("server"),
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server...",
			logger.Component("server"),
			logger.String("signal", sig.String()),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited", logger.Component("server"))
	return nil
}

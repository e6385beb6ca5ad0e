// Package cli provides the bootstrap shared by the binaries under cmd/.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensetracker/internal/amqp"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

// SetupLogger initializes structured logging at the given LOG_LEVEL value
// and installs it as the slog default.
func SetupLogger(level string) *applog.Logger {
	return SetupLoggerTo(os.Stdout, level)
}

// SetupLoggerTo is SetupLogger writing to w. The terminal UI logs to a file
// so records do not tear the screen.
func SetupLoggerTo(w io.Writer, level string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentApp,
		Output:    w,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the repository at dbPath or exits the process.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	logger.WithComponent(applog.ComponentStorage).Info("SQLite ready", "path", dbPath)
	return repo
}

// InitAlertPublisher connects to the broker when alerts are enabled. The
// returned publisher is a nil interface when they are not, and close is
// always safe to call.
func InitAlertPublisher(logger *applog.Logger, cfg *config.Config) (publisher services.AlertPublisher, closeFn func()) {
	if !cfg.AlertsEnabled() {
		logger.Info("Budget alerts disabled - no AMQP_URL provided")
		return nil, func() {}
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		Fatal(logger.WithComponent(applog.ComponentAMQP), "Failed to initialize AMQP client", err)
	}
	logger.Info("Budget alerts enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("AMQP close failed", applog.FieldError, err)
		}
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, stop
}

// Fatal logs err and exits with status 1.
func Fatal(logger *applog.Logger, msg string, err error) {
	logger.Logger.Log(context.Background(), slog.LevelError, msg, applog.FieldComponent, logger.Component(), applog.FieldError, err)
	os.Exit(1)
}

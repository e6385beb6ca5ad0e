package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/cli"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger("info"))
	logger := cli.SetupLogger(cfg.LogLevel)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set; using a random key, sessions end on restart")
	}
	tokens, err := session.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize session tokens", err)
	}

	publisher, closePublisher := cli.InitAlertPublisher(logger, cfg)
	defer closePublisher()

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Users:          services.NewUserService(repo, cfg.BcryptCost),
		Expenses:       services.NewExpenseService(repo, publisher),
		Tokens:         tokens,
		DB:             repo,
		Logger:         logger,
		CurrencySymbol: cfg.CurrencySymbol,
		LoginRateLimit: cfg.LoginRateLimit,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to create HTTP server", err)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expensetracker server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully")
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/services"
	"expensetracker/internal/tui"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Records go to a file next to the database so they do not tear the screen.
	logDir := filepath.Dir(cfg.SQLiteDBPath)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", logDir, err)
		os.Exit(1)
	}
	logPath := filepath.Join(logDir, "expensetracker-tui.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", logPath, err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := cli.SetupLoggerTo(logFile, cfg.LogLevel)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	publisher, closePublisher := cli.InitAlertPublisher(logger, cfg)
	defer closePublisher()

	model := tui.New(tui.Config{
		Users:          services.NewUserService(repo, cfg.BcryptCost),
		Expenses:       services.NewExpenseService(repo, publisher),
		Logger:         logger,
		CurrencySymbol: cfg.CurrencySymbol,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("TUI exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	applog "expensetracker/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger("info"))
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentWorker)

	if err := cfg.RequireAlerts(); err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	events := applog.NewStructuredLogger(logger)
	var handled atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budget-alert-worker", "queue", cfg.AMQPQueue)
		return client.ConsumeBudgetAlerts(gctx, func(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
			events.LogBudgetAlert(ctx, msg.UserID, msg.Username, msg.Year, msg.Month, msg.BudgetCents, msg.TotalCents)
			handled.Add(1)
			return nil
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Message consumption failed", err)
	}
	logger.Info("Worker stopped gracefully", "alerts_handled", handled.Load())
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	"github.com/felixgeelhaar/shiftgrid/adapter/cli/booking"
	"github.com/felixgeelhaar/shiftgrid/adapter/cli/mcp"
	"github.com/felixgeelhaar/shiftgrid/adapter/cli/timeline"
	"github.com/felixgeelhaar/shiftgrid/internal/app"
	"github.com/felixgeelhaar/shiftgrid/pkg/config"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = observability.NewLogger(cfg.LogConfig(cli.Version))
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			// version and help still work without a database
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		if cfg.OutboxProcessorEnabled {
			container.OutboxProcessor.Start(ctx)
		} else {
			logger.Info("outbox processor disabled in CLI")
		}

		cli.SetApp(cli.NewApp(container))
	}

	// Register commands
	cli.AddCommand(timeline.Cmd)
	cli.AddCommand(booking.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/skillcoder/podstream/internal/app"
	"github.com/skillcoder/podstream/internal/config"
	"github.com/skillcoder/podstream/internal/infra/appstate"
	"github.com/skillcoder/podstream/internal/infra/logging"
	"github.com/skillcoder/podstream/internal/infra/pinger"
	"github.com/skillcoder/podstream/internal/infra/shutdown"
)

func main() {
	appStart := time.Now()
	// Start listening for signals immediately as first thing, before any other initialization
	signals := shutdown.Notify()
	ctx := context.Background()

	err := run(ctx, signals, appStart)
	if err != nil {
		slog.ErrorContext(ctx, "failed to run", "reason", err)
		// Give the logger some time to flush
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "bye")
}

func run(ctx context.Context, signals <-chan os.Signal, appStart time.Time) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)

	logger.InfoContext(ctx, "starting podstream",
		"mode", string(cfg.DeploymentMode),
		"namespace", cfg.Namespace,
		"labelSelector", cfg.PodLabelSelector,
	)

	pingers := pinger.New(logger, cfg.PingerInterval)
	appState := appstate.New(logger, appStart, shutdown.DefaultTerminationFile, signals, pingers)

	// registered first so it stops last
	appState.RegisterShutdowner(pingers)

	application, err := app.New(logger, cfg, appState)
	if err != nil {
		return fmt.Errorf("new application: %w", err)
	}

	return application.Run(ctx)
}

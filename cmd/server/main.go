// Package main implements the entry point for the gengate server
// which accepts media-generation jobs over HTTP and executes them
// one at a time against remote inference backends.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/synthworks/gengate/internal/config"
	"github.com/synthworks/gengate/internal/platform/logger"
)

// main is the entry point for the gengate server.
// It loads configuration, sets up logging, wires the task store,
// queue, scheduler and dispatch clients, and starts the HTTP server.
func main() {
	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to assemble application: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

// initializeApp loads configuration and sets up the process-wide logger.
// Returns the loaded config, the logger and any initialization error.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"queue_capacity", cfg.Scheduler.QueueCapacity)

	if cfg.Scheduler.CleanupEnabled {
		slog.Debug("Backend cleanup hook configured", "command_present", cfg.Scheduler.CleanupCommand != "")
	}
	if cfg.Storage.Retention > 0 {
		slog.Debug("Task retention configured", "retention", cfg.Storage.Retention)
	}

	return cfg, appLogger, nil
}

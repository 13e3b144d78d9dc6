package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/synthworks/gengate/internal/config"
	"github.com/synthworks/gengate/internal/dispatch"
	"github.com/synthworks/gengate/internal/files"
	"github.com/synthworks/gengate/internal/platform/cleanup"
	"github.com/synthworks/gengate/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger

	// Storage
	fileManager *files.Manager
	taskStore   *task.Store

	// Scheduling
	taskQueue *task.Queue
	runner    *task.Runner

	// Backend dispatch
	dispatcher *dispatch.Registry
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts the configuration and logger that must be established before
// application initialization, and starts the scheduler worker.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	// Initialize storage directories
	app.fileManager = files.NewManager(cfg.Storage.UploadDir, cfg.Storage.OutputDir)
	if err := app.fileManager.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("failed to prepare storage directories: %w", err)
	}
	logger.Info("Storage directories ready",
		"upload_dir", cfg.Storage.UploadDir,
		"output_dir", cfg.Storage.OutputDir)

	// Initialize task record store and submission queue
	app.taskStore = task.NewStore()
	app.taskQueue = task.NewQueue(
		cfg.Scheduler.QueueCapacity,
		logger.With("component", "task_queue"),
	)

	// Initialize backend dispatch clients
	app.dispatcher = dispatch.NewRegistry(
		cfg.Backends,
		app.fileManager,
		logger.With("component", "dispatch"),
	)

	// Initialize the scheduler
	if err := setupScheduler(app); err != nil {
		return nil, fmt.Errorf("failed to set up scheduler: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	// Start the HTTP server
	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupScheduler initializes and starts the background task worker.
// It uses the application struct to access required dependencies.
func setupScheduler(app *application) error {
	hook := cleanup.Disabled()
	if app.config.Scheduler.CleanupEnabled {
		hook = cleanup.CommandHook(
			app.config.Scheduler.CleanupCommand,
			app.config.Scheduler.CleanupTimeout,
			app.logger.With("component", "cleanup"),
		)
	}

	app.runner = task.NewRunner(
		app.taskStore,
		app.taskQueue,
		app.dispatcher,
		hook,
		app.fileManager,
		task.RunnerConfig{Retention: app.config.Storage.Retention},
		app.logger.With("component", "runner"),
	)
	app.runner.Start()

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop the scheduler worker and retention sweeper
	if app.runner != nil {
		app.runner.Stop()
	}

	app.logger.Info("Application shutdown completed")
}

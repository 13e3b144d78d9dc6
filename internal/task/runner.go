package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/synthworks/gengate/internal/domain"
)

// Outcome is what a dispatcher reports for a successfully executed task.
type Outcome struct {
	// Result is the JSON-serializable value stored on the task record.
	Result any

	// OutputFile is the absolute path of a produced artifact, or empty
	// when the backend returned no file.
	OutputFile string
}

// Dispatcher routes a task's payload to the backend serving its module and
// interprets the response.
type Dispatcher interface {
	Dispatch(ctx context.Context, module domain.Module, payload map[string]any) (*Outcome, error)
}

// CleanupFunc runs after every task, successful or not. Implementations are
// best effort: they bound their own execution time and never return errors.
type CleanupFunc func(ctx context.Context)

// ArtifactRemover deletes what a swept task left on disk.
type ArtifactRemover interface {
	Remove(path string) error
	RemoveUploads(module domain.Module, taskID uuid.UUID) error
}

// RunnerConfig holds configuration for the task runner
type RunnerConfig struct {
	// Retention defines how long terminal task records and their artifacts
	// are kept. Zero disables sweeping entirely.
	Retention time.Duration

	// SweepInterval defines how often to check for expired records.
	// If zero, defaults to 1 minute.
	SweepInterval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Retention:     0,
		SweepInterval: time.Minute,
	}
}

// Runner owns the scheduling pipeline: it accepts submissions, drains the
// queue with its single worker goroutine, drives each task through the
// store's status transitions, and sweeps expired records.
//
// Exactly one worker consumes the queue, which is what serializes all
// backend work: at any moment at most one task is running.
type Runner struct {
	store      *Store
	queue      *Queue
	dispatcher Dispatcher
	cleanup    CleanupFunc
	artifacts  ArtifactRemover
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger

	mu        sync.Mutex
	runningID *uuid.UUID
}

// NewRunner creates a new Runner. The cleanup hook and artifact remover may
// be nil, disabling post-task cleanup and sweep-time artifact deletion.
func NewRunner(
	store *Store,
	queue *Queue,
	dispatcher Dispatcher,
	cleanup CleanupFunc,
	artifacts ArtifactRemover,
	config RunnerConfig,
	logger *slog.Logger,
) *Runner {
	// Apply default sweep interval if not specified
	if config.SweepInterval == 0 {
		config.SweepInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      store,
		queue:      queue,
		dispatcher: dispatcher,
		cleanup:    cleanup,
		artifacts:  artifacts,
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
	}
}

// Submit records a new task under the given ID and claims a queue slot for
// it. The caller owns ID generation so uploads can be staged under the task
// ID beforehand. When the queue is full or closed the record is rolled back
// so rejected submissions leave no trace.
func (r *Runner) Submit(id uuid.UUID, module domain.Module, payload map[string]any) (*domain.Task, error) {
	task, err := r.store.Create(id, module, payload)
	if err != nil {
		return nil, err
	}

	if err := r.queue.Enqueue(task.ID); err != nil {
		r.store.Delete(task.ID)
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return task, nil
}

// Start launches the worker goroutine and, when retention is configured,
// the background sweeper.
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.worker()

	if r.config.Retention > 0 {
		r.wg.Add(1)
		go r.retentionSweeper()
	}
}

// Stop gracefully shuts down the runner: no further submissions are
// accepted, the in-flight dispatch is cancelled, and Stop returns once the
// goroutines have exited.
func (r *Runner) Stop() {
	r.queue.Close()
	r.cancelFunc()
	r.wg.Wait()
}

// RunningTaskID reports the task currently being executed, if any.
func (r *Runner) RunningTaskID() (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runningID == nil {
		return uuid.Nil, false
	}
	return *r.runningID, true
}

// QueueDepth reports how many tasks are waiting to run.
func (r *Runner) QueueDepth() int {
	return r.queue.Len()
}

// worker drains the queue one task at a time.
func (r *Runner) worker() {
	defer r.wg.Done()

	r.logger.Debug("starting worker")

	for {
		select {
		case <-r.ctx.Done():
			// Context cancelled, stop worker
			r.logger.Debug("stopping worker")
			return

		case id, ok := <-r.queue.GetChannel():
			if !ok {
				// Channel closed, stop worker
				r.logger.Debug("task queue closed, stopping worker")
				return
			}

			r.processTask(id)
		}
	}
}

// processTask handles execution of a single task
func (r *Runner) processTask(id uuid.UUID) {
	logger := r.logger.With("task_id", id)

	task, err := r.store.Get(id)
	if err != nil {
		// The record was swept or never existed; nothing to run.
		logger.Debug("discarding queue entry without a task record")
		return
	}
	logger = logger.With("module", task.Module)

	r.setRunning(id)
	defer r.clearRunning()

	if err := r.store.MarkRunning(id); err != nil {
		logger.Error("failed to mark task running", "error", err)
		return
	}

	logger.Info("processing task")

	outcome, err := r.dispatcher.Dispatch(r.ctx, task.Module, task.Payload)

	if err != nil {
		// Task failed
		logger.Error("task execution failed", "error", err)
		if updateErr := r.store.MarkFailed(id, err.Error()); updateErr != nil {
			logger.Error("failed to mark task failed", "error", updateErr)
		}
	} else {
		// Task completed successfully
		logger.Info("task completed successfully", "output_file", outcome.OutputFile)
		if updateErr := r.store.MarkDone(id, outcome.Result, outcome.OutputFile); updateErr != nil {
			logger.Error("failed to mark task done", "error", updateErr)
		}
	}

	r.runCleanup()
}

// runCleanup invokes the post-task hook. The hook is strictly best effort:
// whatever it does must never affect the task outcome, so errors stay inside
// the hook and panics are contained here.
func (r *Runner) runCleanup() {
	if r.cleanup == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Debug("cleanup hook panicked", "panic", rec)
		}
	}()

	r.cleanup(r.ctx)
}

func (r *Runner) setRunning(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runningID = &id
}

func (r *Runner) clearRunning() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runningID = nil
}

// retentionSweeper periodically removes terminal tasks older than the
// configured retention along with their on-disk artifacts.
func (r *Runner) retentionSweeper() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			// Context cancelled, stop sweeper
			return

		case <-ticker.C:
			removed := r.store.SweepTerminal(r.config.Retention)
			if len(removed) == 0 {
				continue
			}

			r.logger.Info("swept expired tasks", "count", len(removed))

			if r.artifacts == nil {
				continue
			}
			for _, task := range removed {
				if task.OutputFile != "" {
					if err := r.artifacts.Remove(task.OutputFile); err != nil {
						r.logger.Warn("failed to remove swept task output",
							"task_id", task.ID,
							"path", task.OutputFile,
							"error", err)
					}
				}
				if err := r.artifacts.RemoveUploads(task.Module, task.ID); err != nil {
					r.logger.Warn("failed to remove swept task uploads",
						"task_id", task.ID,
						"error", err)
				}
			}
		}
	}
}

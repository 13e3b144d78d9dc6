package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// Queue is the buffered FIFO of task IDs waiting for the worker. Many
// producers may enqueue concurrently; exactly one consumer drains it.
type Queue struct {
	ids    chan uuid.UUID
	logger *slog.Logger
	mu     sync.Mutex
	closed bool
}

// NewQueue creates a new task queue with the specified capacity.
func NewQueue(capacity int, logger *slog.Logger) *Queue {
	return &Queue{
		ids:    make(chan uuid.UUID, capacity),
		logger: logger,
	}
}

// Enqueue adds a task ID to the queue for processing.
// It never blocks: a full queue is reported as an error so the caller can
// reject the submission instead of stalling the request.
func (q *Queue) Enqueue(id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ids <- id:
		q.logger.Debug("task enqueued",
			"task_id", id,
			"queue_len", len(q.ids),
			"queue_cap", cap(q.ids))
		return nil
	default:
		// Channel is full
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.ids))
	}
}

// Close closes the task queue, preventing further task submission.
// The consumer drains whatever was enqueued before the close.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ids)
		q.logger.Info("task queue closed")
	}
}

// GetChannel returns a read-only channel for consuming task IDs.
func (q *Queue) GetChannel() <-chan uuid.UUID {
	return q.ids
}

// Len reports how many task IDs are waiting in the queue.
func (q *Queue) Len() int {
	return len(q.ids)
}

package task

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/synthworks/gengate/internal/domain"
)

// Common store errors.
var (
	// ErrTaskNotFound indicates that the requested task does not exist in the store.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskExists indicates that a task with the given ID is already registered.
	ErrTaskExists = errors.New("task already exists")
)

// Store is the in-memory task record store. All state lives for the process
// lifetime only; there is no persistence across restarts.
//
// Reads hand out clones, so callers never observe a record mid-mutation.
// Status transitions go through the Mark methods, which enforce the
// queued -> running -> (done | failed) lifecycle.
type Store struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
}

// NewStore creates an empty task store.
func NewStore() *Store {
	return &Store{
		tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create builds a new queued task under the given ID and registers it in the
// store. IDs are never reused; registering an existing ID is an error. The
// returned snapshot is safe to retain.
func (s *Store) Create(id uuid.UUID, module domain.Module, payload map[string]any) (*domain.Task, error) {
	task, err := domain.NewTask(id, module, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskExists, task.ID)
	}
	s.tasks[task.ID] = task

	return task.Clone(), nil
}

// Get returns a snapshot of the task with the given ID.
func (s *Store) Get(id uuid.UUID) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return task.Clone(), nil
}

// Delete removes a task record. Used to roll back a submission whose
// queue slot could not be claimed, and by the retention sweep.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// MarkRunning transitions a queued task to running and stamps its start time.
func (s *Store) MarkRunning(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	if !task.Status.CanAdvanceTo(domain.TaskStatusRunning) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, task.Status, domain.TaskStatusRunning)
	}

	now := time.Now().UTC()
	task.Status = domain.TaskStatusRunning
	task.StartedAt = &now
	return nil
}

// MarkDone transitions a running task to done, recording its result and,
// when the backend produced one, the output file path.
func (s *Store) MarkDone(id uuid.UUID, result any, outputFile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	if !task.Status.CanAdvanceTo(domain.TaskStatusDone) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, task.Status, domain.TaskStatusDone)
	}

	now := time.Now().UTC()
	task.Status = domain.TaskStatusDone
	task.Result = result
	if outputFile != "" {
		task.OutputFile = outputFile
	}
	task.FinishedAt = &now
	return nil
}

// MarkFailed transitions a running task to failed with a diagnostic message.
func (s *Store) MarkFailed(id uuid.UUID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	if !task.Status.CanAdvanceTo(domain.TaskStatusFailed) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, task.Status, domain.TaskStatusFailed)
	}

	now := time.Now().UTC()
	task.Status = domain.TaskStatusFailed
	task.Error = message
	task.FinishedAt = &now
	return nil
}

// CountByStatus returns how many tasks currently sit in each status.
func (s *Store) CountByStatus() map[domain.TaskStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.TaskStatus]int, 4)
	for _, task := range s.tasks {
		counts[task.Status]++
	}
	return counts
}

// Len returns the number of task records currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// SweepTerminal removes terminal tasks that finished more than olderThan ago
// and returns snapshots of the removed records so the caller can reclaim
// their artifacts. Queued and running tasks are never touched.
func (s *Store) SweepTerminal(olderThan time.Duration) []*domain.Task {
	cutoff := time.Now().UTC().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []*domain.Task
	for id, task := range s.tasks {
		if !task.Status.IsTerminal() {
			continue
		}
		if task.FinishedAt == nil || task.FinishedAt.After(cutoff) {
			continue
		}
		removed = append(removed, task.Clone())
		delete(s.tasks, id)
	}
	return removed
}

package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

// Possible task status values. A task only ever advances
// queued -> running -> (done | failed); it never moves backward.
const (
	TaskStatusQueued  TaskStatus = "queued"
	TaskStatusRunning TaskStatus = "running"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusFailed  TaskStatus = "failed"
)

// IsTerminal reports whether the status is a final state.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone || s == TaskStatusFailed
}

// CanAdvanceTo reports whether a transition from s to next is legal.
func (s TaskStatus) CanAdvanceTo(next TaskStatus) bool {
	switch s {
	case TaskStatusQueued:
		return next == TaskStatusRunning
	case TaskStatusRunning:
		return next == TaskStatusDone || next == TaskStatusFailed
	default:
		return false
	}
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusQueued, TaskStatusRunning, TaskStatusDone, TaskStatusFailed:
		return true
	default:
		return false
	}
}

// Task represents one submitted generation job. The payload is captured at
// submission time and never mutated afterwards; result, output file and error
// are written exactly once by the worker when the task reaches a terminal
// state.
type Task struct {
	ID         uuid.UUID      `json:"task_id"`
	Module     Module         `json:"module"`
	Status     TaskStatus     `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Payload    map[string]any `json:"payload"`
	Result     any            `json:"result,omitempty"`
	OutputFile string         `json:"output_file,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// NewTask creates a new Task for the given module with the given payload.
// The caller supplies the ID because file-bearing submissions stage their
// upload under the task ID before the record exists. It sets the status to
// queued and stamps the creation time. Returns an error if validation fails.
func NewTask(id uuid.UUID, module Module, payload map[string]any) (*Task, error) {
	task := &Task{
		ID:        id,
		Module:    module,
		Status:    TaskStatusQueued,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if !isValidModule(t.Module) {
		return ErrUnknownModule
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	if t.Payload == nil {
		return ErrNilPayload
	}

	return nil
}

// Clone returns a copy of the task safe to hand to readers while the worker
// keeps mutating the original. The payload map is copied; result values are
// written once and never mutated, so sharing them is safe.
func (t *Task) Clone() *Task {
	c := *t
	c.Payload = maps.Clone(t.Payload)
	if t.StartedAt != nil {
		v := *t.StartedAt
		c.StartedAt = &v
	}
	if t.FinishedAt != nil {
		v := *t.FinishedAt
		c.FinishedAt = &v
	}
	return &c
}

// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrEmptyTaskID is returned when a task carries the zero UUID.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")

	// ErrUnknownModule is returned when a module name is outside the
	// supported set.
	ErrUnknownModule = errors.New("unknown module")

	// ErrInvalidTaskStatus is returned when a task status is not valid.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrNilPayload is returned when a task is created without a payload.
	ErrNilPayload = errors.New("payload cannot be nil")

	// ErrInvalidTransition is returned when a status update would move a
	// task backward or out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")
)

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a dispatch failure. The kind prefixes the message stored
// on the task record, so clients can tell a backend error from a gateway one.
type Kind string

// Failure kinds.
const (
	KindTimeout           Kind = "timeout"
	KindBackendStatus     Kind = "backend_status"
	KindRequestFailed     Kind = "request_failed"
	KindResponseInvalid   Kind = "response_invalid"
	KindOutputWriteFailed Kind = "output_write_failed"
)

// Error is a classified dispatch failure. Its rendered form, "kind: message",
// is exactly what lands on a failed task's error field.
type Error struct {
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps err under the given kind.
func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// errorf builds a classified failure from a format string.
func errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// classifyTransport maps an error from the HTTP client onto a failure kind.
// Deadline and network timeouts become KindTimeout; everything else that
// kept the request from completing is KindRequestFailed.
func classifyTransport(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return newError(KindTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return newError(KindTimeout, err)
	default:
		return newError(KindRequestFailed, err)
	}
}

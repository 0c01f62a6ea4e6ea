package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means an identity-requiring operation ran with no
	// current identity.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrUnauthorized means the current identity may not perform the
	// mutation. Advisory only: the server re-checks every request.
	ErrUnauthorized = errors.New("not allowed")
	// ErrBusy means a mutation was attempted while another one was still
	// in flight on the same thread.
	ErrBusy = errors.New("mutation in flight")
	// ErrNetwork marks failures where no structured server response was
	// available: connectivity, timeouts, malformed bodies.
	ErrNetwork = errors.New("network failure")
)

// ValidationError reports client-side input that never reached the server.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// APIError carries the server's structured error envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication means the token is missing or the server rejected it.
	ErrAuthentication = errors.New("authentication required")

	// ErrAlreadyCompleted is informational: the attempt was graded before
	// this delivery arrived, and the stored result is the real outcome.
	ErrAlreadyCompleted = errors.New("attempt already completed")

	// ErrNoActiveAttempt means an operation that needs a live attempt id ran
	// before one was created. Begin fails closed on it.
	ErrNoActiveAttempt = errors.New("no active attempt")

	// ErrStartInFlight / ErrSubmitInFlight reject re-entrant calls while the
	// first one is still talking to the server.
	ErrStartInFlight  = errors.New("attempt start already in flight")
	ErrSubmitInFlight = errors.New("submit already in flight")

	// ErrAttemptNotFound is the client-side view of a 404.
	ErrAttemptNotFound = errors.New("attempt not found")
)

// TransportError wraps a network-level failure. It is retryable: the machine
// surfaces it only after status discovery also failed, so the caller may try
// the same submit again.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

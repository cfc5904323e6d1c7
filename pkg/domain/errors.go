package domain

import (
	"errors"
	"fmt"
)

// ErrTransient marks a remote failure that is worth retrying (rate limiting).
var ErrTransient = errors.New("transient remote failure")

// ErrUnrecoverable marks a remote failure that must not be retried.
var ErrUnrecoverable = errors.New("unrecoverable remote failure")

// ErrRetryExhausted is matched by every RetryExhaustedError.
var ErrRetryExhausted = errors.New("maximum number of retries exceeded")

// ErrPersistence is returned when a transcript store fails to read or write.
var ErrPersistence = errors.New("transcript persistence failed")

// ErrInvalidMotion is returned when a motion does not carry exactly three distinct stances.
var ErrInvalidMotion = errors.New("invalid motion")

// ErrDebateNotFound is returned when a debate cannot be found in the store.
var ErrDebateNotFound = errors.New("debate not found")

// ErrUnsupported is returned by stores that cannot serve an operation (e.g. reading a text log).
var ErrUnsupported = errors.New("operation not supported")

// ErrInvalidAgentVotes is returned when operator-supplied agent votes cannot be parsed.
var ErrInvalidAgentVotes = errors.New("invalid agent votes")

// RetryExhaustedError is returned when a call keeps failing transiently past its retry budget.
type RetryExhaustedError struct {
	Attempts   int
	MaxRetries int
	Last       error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s (max_retries=%d, attempts=%d): %v", ErrRetryExhausted, e.MaxRetries, e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

func (e *RetryExhaustedError) Is(target error) bool { return target == ErrRetryExhausted }

package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrInterrupted is returned when a repetition or a retry pause is
	// cancelled.
	ErrInterrupted = errors.New("resilience: repetition interrupted")

	// ErrRetriesExhausted is returned when every retry attempt failed.
	ErrRetriesExhausted = errors.New("resilience: retries exhausted")
)

package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check timed out.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrNotWarmedUp indicates readiness is held back until warm-up finishes.
	ErrNotWarmedUp = errors.New("health: warm-up not finished")
)

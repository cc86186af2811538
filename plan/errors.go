package plan

import "errors"

// Sentinel errors for plan construction.
var (
	// ErrInvalidEndpoint indicates an endpoint with an invalid method or empty path.
	ErrInvalidEndpoint = errors.New("plan: invalid endpoint")

	// ErrInvalidRepeat indicates a repeat spec with a negative interval.
	ErrInvalidRepeat = errors.New("plan: invalid repeat spec")

	// ErrNilCustomizer indicates a nil customizer was registered or applied.
	ErrNilCustomizer = errors.New("plan: customizer is nil")

	// ErrDuplicateCustomizer indicates a customizer name was registered twice.
	ErrDuplicateCustomizer = errors.New("plan: customizer already registered")
)

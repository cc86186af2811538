package cache

import "errors"

// Sentinel errors for memoized values.
var (
	// ErrNilLoader is returned by Get on a Memo created without a loader.
	ErrNilLoader = errors.New("cache: loader is nil")

	// ErrNilValue is returned when the loader succeeds with a nil value.
	ErrNilValue = errors.New("cache: loader returned nil value")

	// ErrLoaderPanic is returned when the loader panics.
	ErrLoaderPanic = errors.New("cache: loader panicked")
)

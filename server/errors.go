package server

import "errors"

var (
	// ErrAlreadyStarted is returned by Start on a server that was started before.
	ErrAlreadyStarted = errors.New("server: already started")

	// ErrNilConfig is returned by New when no configuration is given.
	ErrNilConfig = errors.New("server: nil config")
)

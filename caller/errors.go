package caller

import "errors"

var (
	// ErrNoPort indicates the server has not bound a port yet.
	ErrNoPort = errors.New("caller: server port is not known")

	// ErrCallFailed indicates the request could not be sent or no response was received.
	ErrCallFailed = errors.New("caller: warm-up call failed")

	// ErrUnsupportedBody indicates a body that cannot be encoded for its content type.
	ErrUnsupportedBody = errors.New("caller: unsupported body for content type")
)

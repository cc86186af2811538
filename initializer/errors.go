package initializer

import "errors"

// ErrPayloadFactory indicates a route's payload factory failed or panicked.
var ErrPayloadFactory = errors.New("initializer: payload factory failed")

package auth

import "errors"

// Sentinel errors for token issuance and validation.
var (
	ErrMissingSecret      = errors.New("auth: signing secret is required")
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")
)

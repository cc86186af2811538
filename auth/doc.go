// Package auth secures the service's application routes with HS256 bearer
// tokens and mints the tokens the warm-up caller presents on self-calls.
//
// A TokenSource issues short-lived tokens. A JWTAuthenticator validates them
// and Guard turns it into HTTP middleware. Routes registered as public in the
// route table are never wrapped by the guard.
package auth

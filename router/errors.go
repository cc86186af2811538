package router

import "errors"

var (
	// ErrInvalidRoute indicates a route with a bad method, pattern or handler.
	ErrInvalidRoute = errors.New("router: invalid route")

	// ErrDuplicateRoute indicates a method and pattern pair is already registered.
	ErrDuplicateRoute = errors.New("router: duplicate route")

	// ErrRouteNotFound indicates no route matches the given method and pattern.
	ErrRouteNotFound = errors.New("router: route not found")
)

package router

import (
	"fmt"
	"net/http"
	"strings"
)

// PayloadFactory produces a sample request body for a warm-up call.
type PayloadFactory func() (any, error)

// WarmUp marks a route for warm-up calls.
type WarmUp struct {
	// Payload overrides the route's RequestPayload when set.
	Payload PayloadFactory

	// ContentType of the produced body. Empty means application/json.
	ContentType string
}

// Route is a single entry in the route table.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler

	// WarmUp, when non-nil, makes the route a warm-up target.
	WarmUp *WarmUp

	// RequestPayload describes the body type the handler accepts.
	RequestPayload PayloadFactory

	// Public routes bypass the table's guard middleware.
	Public bool
}

// Validate checks the route can be mounted.
func (r Route) Validate() error {
	if r.Method == "" || strings.ContainsAny(r.Method, " \t,") {
		return fmt.Errorf("%w: method %q", ErrInvalidRoute, r.Method)
	}
	if !strings.HasPrefix(r.Pattern, "/") {
		return fmt.Errorf("%w: pattern %q must start with /", ErrInvalidRoute, r.Pattern)
	}
	if r.Handler == nil {
		return fmt.Errorf("%w: %s %s has no handler", ErrInvalidRoute, r.Method, r.Pattern)
	}
	return nil
}

// IsTemplated reports whether the pattern contains chi URL parameters or wildcards.
func (r Route) IsTemplated() bool {
	return strings.ContainsAny(r.Pattern, "{*")
}

func (r Route) String() string {
	return r.Method + " " + r.Pattern
}

func routeKey(method, pattern string) string {
	return strings.ToUpper(method) + " " + pattern
}

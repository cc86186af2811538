package router

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Option configures a Table.
type Option func(*Table)

// WithGuard sets the middleware applied to every non-public route.
func WithGuard(guard Middleware) Option {
	return func(t *Table) {
		t.guard = guard
	}
}

// WithMiddleware adds middleware applied to every route, outermost first.
func WithMiddleware(mws ...Middleware) Option {
	return func(t *Table) {
		t.middlewares = append(t.middlewares, mws...)
	}
}

// Table is a live, rebuildable route table.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use. ServeHTTP never
//     blocks on Register, Unregister or Rebuild.
//   - Ordering: Routes returns routes in registration order.
type Table struct {
	mu          sync.RWMutex
	routes      []Route
	guard       Middleware
	middlewares []Middleware

	active atomic.Pointer[chi.Mux]
}

// NewTable creates an empty table serving 404 for every request.
func NewTable(opts ...Option) *Table {
	t := &Table{}
	for _, opt := range opts {
		opt(t)
	}
	t.active.Store(chi.NewMux())
	return t
}

// Register adds a route. The route is not served until Rebuild is called.
func (t *Table) Register(r Route) error {
	if err := r.Validate(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := routeKey(r.Method, r.Pattern)
	for _, existing := range t.routes {
		if routeKey(existing.Method, existing.Pattern) == key {
			return fmt.Errorf("%w: %s", ErrDuplicateRoute, key)
		}
	}
	t.routes = append(t.routes, r)
	return nil
}

// Unregister removes the route with the given method and pattern.
// The route keeps being served until Rebuild is called.
func (t *Table) Unregister(method, pattern string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := routeKey(method, pattern)
	for i, existing := range t.routes {
		if routeKey(existing.Method, existing.Pattern) == key {
			t.routes = append(t.routes[:i], t.routes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRouteNotFound, key)
}

// Rebuild builds a new mux from the current routes and makes it active.
// On error the previously active mux stays in place.
func (t *Table) Rebuild() error {
	t.mu.RLock()
	routes := append([]Route(nil), t.routes...)
	t.mu.RUnlock()

	mux, err := t.build(routes)
	if err != nil {
		return err
	}
	t.active.Store(mux)
	return nil
}

func (t *Table) build(routes []Route) (mux *chi.Mux, err error) {
	// chi panics on methods and patterns it cannot mount.
	defer func() {
		if r := recover(); r != nil {
			mux = nil
			err = fmt.Errorf("%w: %v", ErrInvalidRoute, r)
		}
	}()

	mux = chi.NewMux()
	for _, mw := range t.middlewares {
		mux.Use(mw)
	}
	for _, r := range routes {
		h := r.Handler
		if t.guard != nil && !r.Public {
			h = t.guard(h)
		}
		mux.Method(r.Method, r.Pattern, h)
	}
	return mux, nil
}

// Routes returns a copy of the registered routes in registration order.
func (t *Table) Routes() []Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Route(nil), t.routes...)
}

// Lookup returns the registered route with the given method and pattern.
func (t *Table) Lookup(method, pattern string) (Route, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	key := routeKey(method, pattern)
	for _, r := range t.routes {
		if routeKey(r.Method, r.Pattern) == key {
			return r, true
		}
	}
	return Route{}, false
}

// ServeHTTP dispatches to the active mux.
func (t *Table) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	t.active.Load().ServeHTTP(w, req)
}

package server

import (
	"io"

	"github.com/jonwraymond/warmup/health"
	"github.com/jonwraymond/warmup/initializer"
	"github.com/jonwraymond/warmup/plan"
	"github.com/jonwraymond/warmup/router"
)

// Option configures a Server.
type Option func(*options)

type options struct {
	routes       []router.Route
	customizers  []namedCustomizer
	initializers []initializer.Initializer
	checkers     []health.Checker
	logOutput    io.Writer
}

type namedCustomizer struct {
	name string
	fn   plan.Customizer
}

// WithRoutes adds application routes.
func WithRoutes(routes ...router.Route) Option {
	return func(o *options) {
		o.routes = append(o.routes, routes...)
	}
}

// WithCustomizer registers a plan customizer under name. Customizers run
// after the configuration file's settings and override them.
func WithCustomizer(name string, c plan.Customizer) Option {
	return func(o *options) {
		o.customizers = append(o.customizers, namedCustomizer{name: name, fn: c})
	}
}

// WithInitializers appends initializers that run after the built-in
// transient and handler initializers.
func WithInitializers(inits ...initializer.Initializer) Option {
	return func(o *options) {
		o.initializers = append(o.initializers, inits...)
	}
}

// WithCheckers adds readiness checkers next to the warm-up gate.
func WithCheckers(checks ...health.Checker) Option {
	return func(o *options) {
		o.checkers = append(o.checkers, checks...)
	}
}

// WithLogOutput overrides the log destination from the configuration.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

package initializer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonwraymond/warmup/caller"
	"github.com/jonwraymond/warmup/observe"
	"github.com/jonwraymond/warmup/plan"
	"github.com/jonwraymond/warmup/resilience"
	"github.com/jonwraymond/warmup/router"
)

// RouteTable is the part of the route table the probe needs.
type RouteTable interface {
	Register(r router.Route) error
	Unregister(method, pattern string) error
	Rebuild() error
}

// TransientOption configures a Transient initializer.
type TransientOption func(*Transient)

// WithTransientLogger sets the logger. Default: observe.NopLogger()
func WithTransientLogger(l observe.Logger) TransientOption {
	return func(t *Transient) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithPublicProbe controls whether the probe route bypasses the route
// table's guard. Default: true
func WithPublicProbe(public bool) TransientOption {
	return func(t *Transient) {
		t.public = public
	}
}

// Transient registers the probe route for the duration of the warm-up, calls
// it and removes it again.
type Transient struct {
	routes RouteTable
	caller *caller.Caller
	logger observe.Logger
	public bool
}

// NewTransient creates the probe initializer.
func NewTransient(routes RouteTable, c *caller.Caller, opts ...TransientOption) *Transient {
	t := &Transient{
		routes: routes,
		logger: observe.NopLogger(),
		public: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.caller = c.Named(t.Name())
	t.logger = t.logger.With(observe.Component("initializer"), observe.String("initializer", t.Name()))
	return t
}

// Name returns "transient".
func (t *Transient) Name() string { return "transient" }

// Configure leaves the builder unchanged.
func (t *Transient) Configure(b *plan.Builder) (*plan.Builder, error) { return b, nil }

// ProbeRoute returns the probe route definition.
func ProbeRoute(public bool) router.Route {
	return router.Route{
		Method:  http.MethodPost,
		Pattern: ProbePath,
		Handler: ProbeHandler(),
		Public:  public,
	}
}

// ProbeEndpoint returns the endpoint calling the probe route.
func ProbeEndpoint() plan.Endpoint {
	return plan.Post(ProbePath, DefaultProbePayload(), plan.ContentTypeJSON)
}

// WarmUp registers the probe route when p or one of its repeat specs enables
// it, calls it and always removes it again. A probe failure is returned
// together with any cleanup failure.
func (t *Transient) WarmUp(ctx context.Context, p *plan.Plan) (err error) {
	if !p.RequestsAutomaticEndpoint() {
		return nil
	}

	if err := t.routes.Register(ProbeRoute(t.public)); err != nil {
		return fmt.Errorf("register probe route: %w", err)
	}
	defer func() {
		err = errors.Join(err, t.cleanup())
	}()
	if err := t.routes.Rebuild(); err != nil {
		return fmt.Errorf("rebuild routes: %w", err)
	}

	if p.AutomaticEndpointEnabled() {
		t.logger.Info(ctx, "calling probe endpoint", observe.String("path", ProbePath))
		if err := t.caller.Call(ctx, ProbeEndpoint(), p); err != nil {
			return err
		}
	}

	for _, spec := range p.RepeatSpecs() {
		if spec.Plan == nil || !spec.Plan.AutomaticEndpointEnabled() {
			continue
		}
		t.logger.Info(ctx, "calling probe endpoint repeatedly",
			observe.Int("times", spec.Times),
			observe.Duration("interval", spec.Interval),
		)
		nested := spec.Plan
		err := resilience.InvokeRepeating(ctx, spec.Times, spec.Interval, func(ctx context.Context) error {
			return t.caller.Call(ctx, ProbeEndpoint(), nested)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Transient) cleanup() error {
	var errs []error
	if err := t.routes.Unregister(http.MethodPost, ProbePath); err != nil {
		errs = append(errs, fmt.Errorf("unregister probe route: %w", err))
	}
	if err := t.routes.Rebuild(); err != nil {
		errs = append(errs, fmt.Errorf("rebuild routes: %w", err))
	}
	return errors.Join(errs...)
}

package initializer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/warmup/caller"
	"github.com/jonwraymond/warmup/observe"
	"github.com/jonwraymond/warmup/plan"
	"github.com/jonwraymond/warmup/resilience"
	"github.com/jonwraymond/warmup/router"
)

// RouteSource lists the registered routes in registration order.
type RouteSource interface {
	Routes() []router.Route
}

// HandlersOption configures a Handlers initializer.
type HandlersOption func(*Handlers)

// WithHandlersLogger sets the logger. Default: observe.NopLogger()
func WithHandlersLogger(l observe.Logger) HandlersOption {
	return func(h *Handlers) {
		if l != nil {
			h.logger = l
		}
	}
}

// Handlers adds routes marked for warm-up to the plan and calls every
// endpoint of the plan.
type Handlers struct {
	routes RouteSource
	caller *caller.Caller
	logger observe.Logger
}

// NewHandlers creates the handlers initializer.
func NewHandlers(routes RouteSource, c *caller.Caller, opts ...HandlersOption) *Handlers {
	h := &Handlers{routes: routes, logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(h)
	}
	h.caller = c.Named(h.Name())
	h.logger = h.logger.With(observe.Component("initializer"), observe.String("initializer", h.Name()))
	return h
}

// Name returns "handlers".
func (h *Handlers) Name() string { return "handlers" }

// Configure adds one endpoint per marked route with a literal method and path.
func (h *Handlers) Configure(b *plan.Builder) (*plan.Builder, error) {
	ctx := context.Background()
	for _, r := range h.routes.Routes() {
		if r.WarmUp == nil {
			continue
		}
		if !isLiteralMethod(r.Method) || r.IsTemplated() {
			h.logger.Warn(ctx, "skipping route without a literal method and path",
				observe.String("method", r.Method),
				observe.String("pattern", r.Pattern),
			)
			continue
		}

		body, err := payloadFor(r)
		if err != nil {
			h.logger.Warn(ctx, "calling route without body", observe.Err(err))
			body = nil
		}

		if body == nil {
			b.AddRequest(r.Method, r.Pattern)
			continue
		}
		ct := r.WarmUp.ContentType
		if ct == "" {
			ct = plan.ContentTypeJSON
		}
		b.AddRequestBodyAs(r.Method, r.Pattern, body, ct)
	}
	return b, nil
}

// WarmUp calls each endpoint of p once, then each endpoint of every repeat
// spec the configured number of times. The first failure stops the
// remaining calls and is returned.
func (h *Handlers) WarmUp(ctx context.Context, p *plan.Plan) error {
	for _, e := range p.Endpoints() {
		if err := h.caller.Call(ctx, e, p); err != nil {
			return err
		}
	}

	for _, spec := range p.RepeatSpecs() {
		if spec.Plan == nil {
			continue
		}
		nested := spec.Plan
		for _, e := range nested.Endpoints() {
			err := resilience.InvokeRepeating(ctx, spec.Times, spec.Interval, func(ctx context.Context) error {
				return h.caller.Call(ctx, e, nested)
			})
			if errors.Is(err, resilience.ErrInterrupted) {
				h.logger.Info(ctx, "repeated warm-up calls interrupted",
					observe.String("endpoint", e.String()),
					observe.Err(err),
				)
				return err
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// payloadFor runs the marker's payload factory, falling back to the route's
// request payload factory.
func payloadFor(r router.Route) (body any, err error) {
	factory := r.WarmUp.Payload
	if factory == nil {
		factory = r.RequestPayload
	}
	if factory == nil {
		return nil, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			body = nil
			err = fmt.Errorf("%w: %s: panic: %v", ErrPayloadFactory, r, rec)
		}
	}()

	body, err = factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPayloadFactory, r, err)
	}
	return body, nil
}

func isLiteralMethod(method string) bool {
	return method != "" && method != "*" && !strings.ContainsAny(method, " ,|")
}

package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/warmup/initializer"
	"github.com/jonwraymond/warmup/observe"
	"github.com/jonwraymond/warmup/plan"
	"github.com/jonwraymond/warmup/resilience"
)

// PlanSource returns the assembled warm-up plan.
type PlanSource interface {
	Get(ctx context.Context) (*plan.Plan, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Default: observe.NopLogger()
func WithLogger(l observe.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracer sets the tracer for the run span.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMetrics sets the run metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// Runner performs the warm-up exactly once.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use.
//   - Lifecycle: the first OnServerStarted starts the run; later calls are no-ops.
//   - Completion: IsWarmedUp turns true once, after the run ends for any reason.
type Runner struct {
	plans   PlanSource
	inits   []initializer.Initializer
	logger  observe.Logger
	tracer  trace.Tracer
	metrics observe.Metrics

	started  atomic.Bool
	warmedUp atomic.Bool
	done     chan struct{}
}

// New creates a Runner for the given initializers, run in order.
func New(plans PlanSource, inits []initializer.Initializer, opts ...Option) *Runner {
	r := &Runner{
		plans:  plans,
		inits:  append([]initializer.Initializer(nil), inits...),
		logger: observe.NopLogger(),
		tracer: tracenoop.NewTracerProvider().Tracer("noop"),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics, _ = observe.NewMetrics(nil)
	}
	r.logger = r.logger.With(observe.Component("runner"))
	return r
}

// OnServerStarted starts the warm-up on its own goroutine and returns
// immediately. It reports whether this call started the run.
func (r *Runner) OnServerStarted(ctx context.Context) bool {
	if !r.started.CompareAndSwap(false, true) {
		return false
	}
	go r.run(ctx)
	return true
}

// IsWarmedUp reports whether the warm-up run has ended.
func (r *Runner) IsWarmedUp() bool {
	return r.warmedUp.Load()
}

// Done is closed when the warm-up run has ended.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run ends or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run(ctx context.Context) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "warmup.run")

	var runErr error
	defer func() {
		if rec := recover(); rec != nil {
			runErr = fmt.Errorf("warm-up panicked: %v", rec)
			r.logger.Error(ctx, "warm-up panicked", observe.Err(runErr))
		}

		elapsed := time.Since(start)
		r.metrics.RecordRun(ctx, elapsed, runErr)
		if runErr != nil {
			span.RecordError(runErr)
			span.SetStatus(codes.Error, runErr.Error())
		}
		span.End()

		r.warmedUp.Store(true)
		close(r.done)
		r.logger.Info(ctx, "warm-up finished", observe.Duration("duration", elapsed))
	}()

	r.logger.Info(ctx, "warm-up started", observe.Int("initializers", len(r.inits)))

	p, err := r.plans.Get(ctx)
	if err != nil {
		runErr = err
		r.logger.Error(ctx, "could not assemble warm-up plan", observe.Err(err))
		return
	}

	var errs []error
	for _, in := range r.inits {
		if ctx.Err() != nil {
			r.logger.Info(ctx, "warm-up cancelled", observe.String("next", in.Name()))
			break
		}

		err := r.warmUp(ctx, in, p)
		switch {
		case err == nil:
		case errors.Is(err, resilience.ErrInterrupted), errors.Is(err, context.Canceled):
			r.logger.Info(ctx, "warm-up initializer interrupted",
				observe.String("initializer", in.Name()),
				observe.Err(err),
			)
		default:
			errs = append(errs, err)
			r.logger.Error(ctx, "warm-up initializer failed",
				observe.String("initializer", in.Name()),
				observe.Err(err),
			)
		}
	}
	runErr = errors.Join(errs...)
}

// warmUp runs one initializer and turns a panic into an error so that the
// remaining initializers still run.
func (r *Runner) warmUp(ctx context.Context, in initializer.Initializer, p *plan.Plan) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("initializer %s panicked: %v", in.Name(), rec)
		}
	}()
	return in.WarmUp(ctx, p)
}

package observe

import (
	"context"
	"time"
)

// CallFunc performs one warm-up call and reports the response status code.
// A zero status means no response was received.
type CallFunc func(ctx context.Context, meta CallMeta) (int, error)

// Middleware wraps warm-up calls with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe CallFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics, _ = NewMetrics(nil)
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Wrap wraps a CallFunc with tracing, metrics and logging.
func (m *Middleware) Wrap(fn CallFunc) CallFunc {
	return func(ctx context.Context, meta CallMeta) (int, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		status, err := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, status, err)
		m.metrics.RecordCall(ctx, meta, status, duration, err)

		fields := []Field{
			String("method", meta.Method),
			String("path", meta.Path),
			Int("status", status),
			Duration("duration", duration),
		}
		if err != nil {
			fields = append(fields, Err(err))
		}
		m.logger.Debug(ctx, "warm-up call finished", fields...)

		return status, err
	}
}

// Metrics returns the metrics recorder used by the middleware.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Tracer returns the tracer used by the middleware.
func (m *Middleware) Tracer() Tracer { return m.tracer }

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

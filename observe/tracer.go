package observe

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// CallMeta describes one warm-up call for telemetry purposes.
type CallMeta struct {
	Initializer string // Name of the initializer issuing the call
	Method      string // HTTP method
	Path        string // Request path, without host
}

// SpanName returns the deterministic span name for the call.
// Format: warmup.call.<initializer> or warmup.call
func (m CallMeta) SpanName() string {
	if m.Initializer != "" {
		return "warmup.call." + m.Initializer
	}
	return "warmup.call"
}

func (m CallMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", m.Method),
		attribute.String("url.path", m.Path),
	}
	if m.Initializer != "" {
		attrs = append(attrs, attribute.String("warmup.initializer", m.Initializer))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with warm-up span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for a single warm-up call.
	StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the status code and any error.
	EndSpan(span trace.Span, status int, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta CallMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(meta.attributes()...),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, status int, err error) {
	if span == nil {
		return
	}
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status >= 400:
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics records warm-up call and run metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one warm-up call with its status code and error.
	RecordCall(ctx context.Context, meta CallMeta, status int, duration time.Duration, err error)

	// RecordRun records a whole warm-up run.
	RecordRun(ctx context.Context, duration time.Duration, err error)
}

type metricsImpl struct {
	callTotal    metric.Int64Counter
	callErrors   metric.Int64Counter
	callDuration metric.Float64Histogram
	runDuration  metric.Float64Histogram
	runErrors    metric.Int64Counter
}

// NewMetrics creates the warm-up instruments on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("noop")
	}

	callTotal, err := meter.Int64Counter(
		"warmup.call.total",
		metric.WithDescription("Total number of warm-up calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	callErrors, err := meter.Int64Counter(
		"warmup.call.errors",
		metric.WithDescription("Warm-up calls that failed or returned a non-2xx status"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	callDuration, err := meter.Float64Histogram(
		"warmup.call.duration_ms",
		metric.WithDescription("Warm-up call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"warmup.run.duration_ms",
		metric.WithDescription("Duration of a full warm-up run in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	runErrors, err := meter.Int64Counter(
		"warmup.run.errors",
		metric.WithDescription("Warm-up runs that ended with an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		callTotal:    callTotal,
		callErrors:   callErrors,
		callDuration: callDuration,
		runDuration:  runDuration,
		runErrors:    runErrors,
	}, nil
}

func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, status int, duration time.Duration, err error) {
	attrs := meta.attributes()
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", status))
	}
	opt := metric.WithAttributes(attrs...)

	m.callTotal.Add(ctx, 1, opt)
	m.callDuration.Record(ctx, float64(duration.Microseconds())/1000.0, opt)
	if err != nil || status < 200 || status > 299 {
		m.callErrors.Add(ctx, 1, opt)
	}
}

func (m *metricsImpl) RecordRun(ctx context.Context, duration time.Duration, err error) {
	m.runDuration.Record(ctx, float64(duration.Microseconds())/1000.0)
	if err != nil {
		m.runErrors.Add(ctx, 1)
	}
}

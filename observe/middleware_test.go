package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type harness struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
	mw     *Middleware
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	logs := &bytes.Buffer{}
	mw := NewMiddleware(NewTracer(tp.Tracer("test")), metrics, NewLoggerWithWriter("debug", logs))
	return &harness{spans: spans, reader: reader, logs: logs, mw: mw}
}

func (h *harness) collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := h.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s is %T, want Sum[int64]", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMiddleware_SuccessPath(t *testing.T) {
	h := newHarness(t)
	meta := CallMeta{Initializer: "handlers", Method: "GET", Path: "/catalog"}

	wrapped := h.mw.Wrap(func(ctx context.Context, _ CallMeta) (int, error) {
		return 200, nil
	})
	status, err := wrapped(context.Background(), meta)
	if err != nil || status != 200 {
		t.Fatalf("wrapped() = %d, %v", status, err)
	}

	spans := h.spans.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "warmup.call.handlers" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("span status = %v, want Ok", spans[0].Status().Code)
	}

	rm := h.collect(t)
	if got := sumOf(t, findMetric(rm, "warmup.call.total")); got != 1 {
		t.Errorf("warmup.call.total = %d, want 1", got)
	}
	if got := sumOf(t, findMetric(rm, "warmup.call.errors")); got != 0 {
		t.Errorf("warmup.call.errors = %d, want 0", got)
	}
	if findMetric(rm, "warmup.call.duration_ms") == nil {
		t.Error("warmup.call.duration_ms not recorded")
	}
	if entry := lastEntry(t, h.logs); entry["message"] != "warm-up call finished" {
		t.Errorf("log message = %v", entry["message"])
	}
}

func TestMiddleware_ErrorPath(t *testing.T) {
	h := newHarness(t)
	testErr := errors.New("connection refused")

	wrapped := h.mw.Wrap(func(ctx context.Context, _ CallMeta) (int, error) {
		return 0, testErr
	})
	if _, err := wrapped(context.Background(), CallMeta{Method: "GET", Path: "/"}); err != testErr {
		t.Fatalf("err = %v, want %v", err, testErr)
	}

	spans := h.spans.Ended()
	if len(spans) != 1 || spans[0].Status().Code != codes.Error {
		t.Fatalf("expected one errored span, got %+v", spans)
	}
	if got := sumOf(t, findMetric(h.collect(t), "warmup.call.errors")); got != 1 {
		t.Errorf("warmup.call.errors = %d, want 1", got)
	}
}

func TestMiddleware_Non2xxCountsAsError(t *testing.T) {
	h := newHarness(t)

	wrapped := h.mw.Wrap(func(ctx context.Context, _ CallMeta) (int, error) {
		return 503, nil
	})
	if _, err := wrapped(context.Background(), CallMeta{Method: "GET", Path: "/"}); err != nil {
		t.Fatalf("err = %v", err)
	}

	if got := sumOf(t, findMetric(h.collect(t), "warmup.call.errors")); got != 1 {
		t.Errorf("warmup.call.errors = %d, want 1", got)
	}
	if spans := h.spans.Ended(); spans[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status().Code)
	}
}

func TestMetrics_RecordRun(t *testing.T) {
	h := newHarness(t)
	h.mw.Metrics().RecordRun(context.Background(), 0, nil)
	h.mw.Metrics().RecordRun(context.Background(), 0, errors.New("x"))

	rm := h.collect(t)
	if findMetric(rm, "warmup.run.duration_ms") == nil {
		t.Error("warmup.run.duration_ms not recorded")
	}
	if got := sumOf(t, findMetric(rm, "warmup.run.errors")); got != 1 {
		t.Errorf("warmup.run.errors = %d, want 1", got)
	}
}

func TestMiddlewareFromObserver(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Fatalf("err = %v, want ErrNilObserver", err)
	}

	obs, err := NewObserver(context.Background(), Config{ServiceName: "warmupd"})
	if err != nil {
		t.Fatal(err)
	}
	mw, err := MiddlewareFromObserver(obs)
	if err != nil || mw == nil {
		t.Fatalf("MiddlewareFromObserver() = %v, %v", mw, err)
	}
}

func TestNopMiddleware(t *testing.T) {
	wrapped := NopMiddleware().Wrap(func(ctx context.Context, _ CallMeta) (int, error) {
		return 204, nil
	})
	if status, err := wrapped(context.Background(), CallMeta{}); status != 204 || err != nil {
		t.Fatalf("wrapped() = %d, %v", status, err)
	}
}

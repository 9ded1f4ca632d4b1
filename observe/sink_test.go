package observe

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/callguard/guard"
)

func newTestSink(t *testing.T) (*Sink, *tracetest.SpanRecorder, *sdkmetric.ManualReader, *bytes.Buffer) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	sink := NewSink(newTracer(tp.Tracer("test")), metrics, logger)
	return sink, recorder, reader, &buf
}

// TestSink_NotifySuccess verifies a successful outcome produces a span,
// metric samples, and an info log line.
func TestSink_NotifySuccess(t *testing.T) {
	sink, recorder, reader, buf := newTestSink(t)

	sink.Notify(context.Background(), guard.Event{
		Name:     guard.EventCallSucceeded,
		Endpoint: "https://api.example.com/flags",
		CallID:   "call-1",
		Attempts: 2,
		Latency:  80 * time.Millisecond,
		Success:  true,
	})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code == codes.Error {
		t.Error("success outcome should not produce error span status")
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	if findMetric(rm, "call.total") == nil {
		t.Error("call.total metric not recorded")
	}

	entries := decodeLogLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry["level"] != "info" {
		t.Errorf("expected info log, got %v", entry["level"])
	}
	if entry["outcome"] != guard.EventCallSucceeded {
		t.Errorf("expected outcome=%q, got %v", guard.EventCallSucceeded, entry["outcome"])
	}
	if entry["call.id"] != "call-1" {
		t.Errorf("expected call.id attached, got %v", entry["call.id"])
	}
}

// TestSink_NotifyFailure verifies a failed outcome produces an error span,
// an error metric, and an error log line with the reason.
func TestSink_NotifyFailure(t *testing.T) {
	sink, recorder, reader, buf := newTestSink(t)

	sink.Notify(context.Background(), guard.Event{
		Name:        guard.EventCallFailed,
		Endpoint:    "https://api.example.com/flags",
		CallID:      "call-2",
		Attempts:    3,
		Latency:     400 * time.Millisecond,
		Success:     false,
		ErrorReason: guard.ReasonTransportError,
	})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Error("failure outcome should produce error span status")
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	found := findMetric(rm, "call.errors")
	if found == nil {
		t.Fatal("call.errors metric not recorded")
	}

	entries := decodeLogLines(t, buf)
	entry := entries[0]
	if entry["level"] != "error" {
		t.Errorf("expected error log, got %v", entry["level"])
	}
	if entry["reason"] != guard.ReasonTransportError {
		t.Errorf("expected reason=%q, got %v", guard.ReasonTransportError, entry["reason"])
	}
}

// TestSink_NotifyRejected verifies a short-circuited call is observable.
func TestSink_NotifyRejected(t *testing.T) {
	sink, _, reader, buf := newTestSink(t)

	sink.Notify(context.Background(), guard.Event{
		Name:        guard.EventCallRejected,
		Endpoint:    "https://api.example.com/flags",
		CallID:      "call-3",
		Attempts:    0,
		Success:     false,
		ErrorReason: guard.ReasonCircuitOpen,
	})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	found := findMetric(rm, "call.attempts")
	if found == nil {
		t.Fatal("call.attempts metric not recorded")
	}
	hist, ok := found.Data.(metricdata.Histogram[int64])
	if !ok {
		t.Fatalf("expected Histogram[int64], got %T", found.Data)
	}
	if hist.DataPoints[0].Sum != 0 {
		t.Errorf("expected 0 attempts recorded, got %d", hist.DataPoints[0].Sum)
	}

	entries := decodeLogLines(t, buf)
	if entries[0]["reason"] != guard.ReasonCircuitOpen {
		t.Errorf("expected reason=%q, got %v", guard.ReasonCircuitOpen, entries[0]["reason"])
	}
}

// TestSinkFromObserver verifies the convenience constructor.
func TestSinkFromObserver(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "callguard"})
	if err != nil {
		t.Fatalf("NewObserver failed: %v", err)
	}

	sink, err := SinkFromObserver(obs)
	if err != nil {
		t.Fatalf("SinkFromObserver failed: %v", err)
	}
	sink.Notify(context.Background(), guard.Event{
		Name:     guard.EventCallSucceeded,
		Endpoint: "https://api.example.com",
		Success:  true,
	})
}

// TestSinkFromObserver_Nil verifies the nil observer guard.
func TestSinkFromObserver_Nil(t *testing.T) {
	if _, err := SinkFromObserver(nil); err != ErrNilObserver {
		t.Errorf("SinkFromObserver(nil) error = %v, want ErrNilObserver", err)
	}
}

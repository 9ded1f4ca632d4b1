package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/callguard/guard"
)

// Metrics records outcome metrics for guarded calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records the terminal outcome of a guarded call.
	RecordCall(ctx context.Context, ev guard.Event)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	latencyHist  metric.Float64Histogram
	attemptsHist metric.Int64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"call.total",
		metric.WithDescription("Total number of guarded calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"call.errors",
		metric.WithDescription("Total number of failed guarded calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	latencyHist, err := meter.Float64Histogram(
		"call.latency_ms",
		metric.WithDescription("End-to-end guarded call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	attemptsHist, err := meter.Int64Histogram(
		"call.attempts",
		metric.WithDescription("Transport attempts consumed per guarded call"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		latencyHist:  latencyHist,
		attemptsHist: attemptsHist,
	}, nil
}

// RecordCall records metrics for a terminal call outcome.
func (m *metricsImpl) RecordCall(ctx context.Context, ev guard.Event) {
	attrs := []attribute.KeyValue{
		attribute.String("call.endpoint", ev.Endpoint),
		attribute.String("call.outcome", ev.Name),
	}
	if ev.ErrorReason != "" {
		attrs = append(attrs, attribute.String("call.reason", ev.ErrorReason))
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if !ev.Success {
		m.errorCount.Add(ctx, 1, opt)
	}

	m.latencyHist.Record(ctx, float64(ev.Latency.Milliseconds()), opt)
	m.attemptsHist.Record(ctx, int64(ev.Attempts), opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordCall(ctx context.Context, ev guard.Event) {}

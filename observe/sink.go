package observe

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/callguard/guard"
)

// Sink adapts the observability stack to the guard EventSink interface.
// Every terminal call outcome produces a span, metric samples, and a
// structured log line.
//
// Contract:
//   - Concurrency: Notify is safe for concurrent use.
//   - Context: Propagates context into span and metric recording.
//   - Errors: Notify is best-effort and must not panic.
type Sink struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewSink creates a Sink from the given observability components.
func NewSink(tracer Tracer, metrics Metrics, logger Logger) *Sink {
	return &Sink{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// SinkFromObserver creates a Sink from an Observer.
// This is a convenience function for common use cases.
func SinkFromObserver(obs Observer) (*Sink, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewSink(tracer, metrics, obs.Logger()), nil
}

// Notify records the terminal outcome of a guarded call.
func (s *Sink) Notify(ctx context.Context, ev guard.Event) {
	meta := CallMeta{Endpoint: ev.Endpoint, CallID: ev.CallID}

	// The call already finished; the span captures its outcome, not its
	// duration.
	_, span := s.tracer.StartSpan(ctx, meta)
	span.SetAttributes(
		attribute.String("call.outcome", ev.Name),
		attribute.Int("call.attempts", ev.Attempts),
		attribute.Float64("call.latency_ms", float64(ev.Latency.Milliseconds())),
	)

	var spanErr error
	if !ev.Success {
		spanErr = errors.New(ev.ErrorReason)
	}
	s.tracer.EndSpan(span, spanErr)

	s.metrics.RecordCall(ctx, ev)

	callLogger := s.logger.WithCall(meta)
	fields := []Field{
		{Key: "outcome", Value: ev.Name},
		{Key: "attempts", Value: ev.Attempts},
		{Key: "latency_ms", Value: float64(ev.Latency.Milliseconds())},
	}

	if ev.Success {
		callLogger.Info(ctx, "call completed", fields...)
	} else {
		fields = append(fields, Field{Key: "reason", Value: ev.ErrorReason})
		callLogger.Error(ctx, "call failed", fields...)
	}
}

// NopSink returns a Sink whose components all discard their input. Useful
// in tests and as a safe default.
func NopSink() *Sink {
	return NewSink(newNoopTracer(), &noopMetrics{}, &noopLogger{})
}

// Ensure Sink satisfies the guard contract.
var _ guard.EventSink = (*Sink)(nil)

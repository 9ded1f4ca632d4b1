package guard

import (
	"context"
	"time"
)

// Event names reported to the event sink. Every terminal outcome of a
// guarded call produces exactly one event.
const (
	// EventCallSucceeded is emitted when an attempt returned a response.
	EventCallSucceeded = "call.succeeded"

	// EventCallFailed is emitted when every permitted attempt failed.
	EventCallFailed = "call.failed"

	// EventCallRejected is emitted when the call was rejected before any
	// attempt ran (circuit open, rate limited, or bulkhead full).
	EventCallRejected = "call.rejected"

	// EventCallCancelled is emitted when the call was cancelled during a
	// backoff wait.
	EventCallCancelled = "call.cancelled"
)

// Event is the structured notification delivered to an EventSink.
type Event struct {
	// Name is one of the EventCall constants.
	Name string

	// Endpoint is the endpoint the call targeted.
	Endpoint string

	// CallID is the opaque call identifier.
	CallID string

	// Attempts is the number of transport attempts made.
	Attempts int

	// Latency is the duration of the attempt that produced the outcome.
	Latency time.Duration

	// Success reports whether the call succeeded.
	Success bool

	// ErrorReason names the failure kind. Empty on success.
	ErrorReason string

	// Time is when the outcome was produced.
	Time time.Time
}

// EventSink receives terminal call notifications for audit and
// diagnostics. Delivery is fire-and-forget: a sink that blocks slows the
// caller, and a sink that panics is recovered without affecting the
// returned outcome.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: notification is best-effort; there is no error return.
type EventSink interface {
	Notify(ctx context.Context, event Event)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(ctx context.Context, event Event)

// Notify calls the wrapped function.
func (f SinkFunc) Notify(ctx context.Context, event Event) {
	f(ctx, event)
}

// NopSink discards all events.
type NopSink struct{}

// Notify does nothing.
func (NopSink) Notify(ctx context.Context, event Event) {}

// MultiSink fans an event out to several sinks in order.
func MultiSink(sinks ...EventSink) EventSink {
	return SinkFunc(func(ctx context.Context, event Event) {
		for _, s := range sinks {
			s.Notify(ctx, event)
		}
	})
}

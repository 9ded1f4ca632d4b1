package guard

import "time"

// Error reasons carried on failure outcomes.
const (
	// ReasonCircuitOpen means the circuit was open and no attempt ran.
	ReasonCircuitOpen = "circuit_breaker_open"

	// ReasonTimeout means the final attempt exceeded its timeout.
	ReasonTimeout = "timeout"

	// ReasonTransportError means the final attempt failed at the
	// transport level, including error-status responses.
	ReasonTransportError = "transport_error"

	// ReasonCancelled means the surrounding context was cancelled during
	// a backoff wait.
	ReasonCancelled = "cancelled"

	// ReasonRateLimited means the outbound rate limiter rejected the call.
	ReasonRateLimited = "rate_limited"

	// ReasonBulkheadFull means the concurrency bulkhead was at capacity.
	ReasonBulkheadFull = "bulkhead_full"
)

// Outcome is the structured result of one guarded call. Transport
// instability is absorbed into the outcome rather than surfaced as a
// fault; the collaborator decides whether a failure is job-fatal.
type Outcome struct {
	// Success reports whether any attempt produced a usable response.
	Success bool

	// Endpoint is the endpoint the call targeted.
	Endpoint string

	// CallID is the opaque call identifier.
	CallID string

	// AttemptsUsed is the number of transport attempts made. Zero when
	// the call was rejected before the first attempt.
	AttemptsUsed int

	// Latency is the duration of the attempt that produced the final
	// outcome.
	Latency time.Duration

	// ErrorReason names the failure kind. Empty on success.
	ErrorReason string

	// Err is the underlying error. Nil on success. For exhausted retries
	// it wraps both ErrExhausted and the last attempt's error.
	Err error

	// Response is the transport response. Set only on success.
	Response *Response
}

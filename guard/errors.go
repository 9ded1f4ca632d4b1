package guard

import "errors"

// Sentinel errors for guarded calls.
var (
	// ErrCircuitOpen is returned when the endpoint's circuit is open and
	// no transport attempt was made.
	ErrCircuitOpen = errors.New("guard: circuit breaker is open")

	// ErrAttemptTimeout is returned when a single transport attempt
	// exceeded the per-attempt timeout.
	ErrAttemptTimeout = errors.New("guard: attempt timed out")

	// ErrExhausted is returned when every permitted attempt failed.
	ErrExhausted = errors.New("guard: retry attempts exhausted")

	// ErrCancelled is returned when the surrounding context was cancelled
	// during a backoff wait.
	ErrCancelled = errors.New("guard: call cancelled")

	// ErrRateLimited is returned when the outbound rate limiter rejected
	// the call before any attempt was made.
	ErrRateLimited = errors.New("guard: rate limit exceeded")

	// ErrBulkheadFull is returned when the concurrency bulkhead is at
	// capacity.
	ErrBulkheadFull = errors.New("guard: bulkhead at capacity")
)

// Configuration errors, reported eagerly by constructors.
var (
	// ErrInvalidAttempts indicates MaxAttempts < 1.
	ErrInvalidAttempts = errors.New("guard: max attempts must be at least 1")

	// ErrInvalidDelay indicates a non-positive base or max delay.
	ErrInvalidDelay = errors.New("guard: delays must be positive")

	// ErrInvalidJitter indicates a jitter fraction outside [0, 1].
	ErrInvalidJitter = errors.New("guard: jitter fraction must be in [0, 1]")

	// ErrInvalidThreshold indicates FailureThreshold < 1.
	ErrInvalidThreshold = errors.New("guard: failure threshold must be at least 1")

	// ErrNilTransport indicates a nil Transport was provided.
	ErrNilTransport = errors.New("guard: transport is required")
)

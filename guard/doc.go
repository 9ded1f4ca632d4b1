// Package guard wraps outbound calls to external services with bounded
// retries and per-endpoint circuit breaking.
//
// The package is transport-agnostic: the caller hands an endpoint and a
// payload to a Transport implementation and gets back either a response
// or an error. Everything around that single attempt — backoff between
// retries, the circuit breaker state machine, terminal event reporting —
// is handled here.
//
// # Components
//
//   - BackoffPolicy: computes the delay before each retry attempt using
//     capped exponential backoff with symmetric jitter.
//
//   - Breaker: a registry of per-endpoint circuit breaker state machines.
//     After enough consecutive failures an endpoint is suspended for a
//     cooldown period, then probed with a single trial call.
//
//   - Caller: orchestrates the attempt loop. It consults the breaker,
//     invokes the transport with a per-attempt timeout, waits between
//     attempts, and reports every terminal outcome exactly once to an
//     EventSink.
//
// # Usage
//
//	policy, err := guard.NewBackoffPolicy(guard.BackoffConfig{
//	    MaxAttempts: 3,
//	    BaseDelay:   2 * time.Second,
//	    MaxDelay:    60 * time.Second,
//	})
//
//	caller, err := guard.NewCaller(transport, guard.CallerConfig{
//	    Backoff: guard.BackoffConfig{MaxAttempts: 3},
//	    Breaker: guard.BreakerConfig{FailureThreshold: 3},
//	    Sink:    sink,
//	})
//
//	outcome := caller.Call(ctx, guard.Request{
//	    Endpoint: "https://api.example.com/v1/audit",
//	    Payload:  map[string]any{"job_id": "j-123"},
//	})
//
// A Caller never panics or propagates transport errors as faults: every
// result, including circuit-open rejections and exhausted retries, comes
// back as a structured Outcome. The only hard failures are configuration
// errors, reported eagerly by the constructors.
package guard

package guard

import (
	"context"
	"fmt"
)

// Response describes the result of a successful transport attempt. The
// guard never parses the body; it is carried through for the caller.
type Response struct {
	// StatusCode is the protocol status code, e.g. an HTTP status.
	StatusCode int

	// Body is the raw response body.
	Body []byte
}

// Transport performs a single attempt against an endpoint. The supplied
// context carries the per-attempt timeout; implementations must honor
// cancellation.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: a non-nil error means the attempt failed at the transport
//     level. Error-status responses (e.g. HTTP >= 400) should be returned
//     as a Response with no error; the caller's classifier decides
//     whether they count as failures.
type Transport interface {
	Do(ctx context.Context, endpoint string, payload map[string]any) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, endpoint string, payload map[string]any) (*Response, error)

// Do calls the wrapped function.
func (f TransportFunc) Do(ctx context.Context, endpoint string, payload map[string]any) (*Response, error) {
	return f(ctx, endpoint, payload)
}

// StatusError reports a response with an error status code. The default
// caller classification treats it as retryable, like any other failure.
type StatusError struct {
	// Code is the response status code.
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("guard: unexpected status %d", e.Code)
}

package health

import (
	"context"
	"time"
)

// Status classifies a component's ability to serve guarded calls. The
// values are ordered by severity so reports can be reduced by taking
// the maximum.
type Status int

const (
	// StatusHealthy means the component is serving calls normally.
	StatusHealthy Status = iota

	// StatusDegraded means the component is serving calls with reduced
	// capacity, for example while a circuit probes recovery.
	StatusDegraded

	// StatusUnhealthy means the component cannot serve calls.
	StatusUnhealthy
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of one health check.
type Result struct {
	// Status is the component's classification.
	Status Status

	// Message is a short operator-facing summary.
	Message string

	// Details carries per-component metadata, for example the breaker
	// phase of each tracked endpoint.
	Details map[string]any

	// Duration is how long the check took.
	Duration time.Duration

	// Timestamp is when the check ran.
	Timestamp time.Time

	// Error is the cause when the check itself failed.
	Error error
}

// Healthy builds a healthy result with the given summary.
func Healthy(message string) Result {
	return Result{Status: StatusHealthy, Message: message, Timestamp: time.Now()}
}

// Degraded builds a degraded result with the given summary.
func Degraded(message string) Result {
	return Result{Status: StatusDegraded, Message: message, Timestamp: time.Now()}
}

// Unhealthy builds an unhealthy result carrying the cause.
func Unhealthy(message string, err error) Result {
	return Result{Status: StatusUnhealthy, Message: message, Error: err, Timestamp: time.Now()}
}

// WithDetails returns a copy of the result carrying the details map.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration returns a copy of the result stamped with a duration.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// Checker reports the health of one component. Names are assigned at
// registration, not by the checker itself.
type Checker interface {
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) Result

// Check calls the wrapped function.
func (f CheckerFunc) Check(ctx context.Context) Result {
	return f(ctx)
}

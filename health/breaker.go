package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/callguard/guard"
)

// BreakerChecker reports circuit breaker state as component health. An
// open circuit on any endpoint makes the component unhealthy; a
// half-open circuit makes it degraded.
type BreakerChecker struct {
	breaker *guard.Breaker
}

// NewBreakerChecker creates a checker over the given breaker registry.
func NewBreakerChecker(breaker *guard.Breaker) (*BreakerChecker, error) {
	if breaker == nil {
		return nil, ErrNilBreaker
	}
	return &BreakerChecker{breaker: breaker}, nil
}

// Check inspects every tracked endpoint and maps breaker phases onto a
// health status.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	states := c.breaker.States()

	details := make(map[string]any, len(states))
	var open, halfOpen int
	for endpoint, state := range states {
		detail := map[string]any{
			"phase":    state.Phase.String(),
			"failures": state.FailureCount,
		}
		if !state.NextAttempt.IsZero() {
			detail["next_attempt"] = state.NextAttempt.UTC().Format(time.RFC3339)
		}
		details[endpoint] = detail

		switch state.Phase {
		case guard.PhaseOpen:
			open++
		case guard.PhaseHalfOpen:
			halfOpen++
		}
	}

	switch {
	case open > 0:
		return Unhealthy(fmt.Sprintf("%d of %d endpoints have an open circuit", open, len(states)), nil).
			WithDetails(details)
	case halfOpen > 0:
		return Degraded(fmt.Sprintf("%d of %d endpoints are probing recovery", halfOpen, len(states))).
			WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("all %d tracked endpoints closed", len(states))).
			WithDetails(details)
	}
}

package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Request describes one logical guarded call. The guard does not
// interpret the payload; it is handed to the Transport as-is.
type Request struct {
	// Endpoint identifies the remote endpoint and keys the circuit
	// breaker state.
	Endpoint string

	// CallID is an opaque identifier carried through events and the
	// outcome. A UUID is generated when empty.
	CallID string

	// Payload is the request payload.
	Payload map[string]any
}

// CallerConfig configures a Caller.
type CallerConfig struct {
	// Backoff configures the retry policy.
	Backoff BackoffConfig

	// Breaker configures the per-endpoint circuit breaker registry.
	// Ignored when Registry is set.
	Breaker BreakerConfig

	// Registry, when set, is a shared breaker registry used instead of
	// constructing one from Breaker. Lets several callers gate on the
	// same endpoint state.
	Registry *Breaker

	// AttemptTimeout bounds each individual transport attempt.
	// Default: 30 seconds
	AttemptTimeout time.Duration

	// RetryIf decides whether a failed attempt should be retried.
	// Default: every failure is retryable, including error-status
	// responses.
	RetryIf func(err error) bool

	// Sink receives exactly one event per terminal outcome.
	// Default: NopSink
	Sink EventSink

	// RateLimiter, when set, gates calls before the breaker check.
	RateLimiter *RateLimiter

	// Bulkhead, when set, caps concurrent calls before the breaker check.
	Bulkhead *Bulkhead

	// OnRetry is called before each backoff wait with the failed attempt
	// number, its error, and the chosen delay. Intended for low-severity
	// diagnostics; intermediate failures are not reported to the Sink.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Sleep performs the inter-attempt wait. Injectable for tests.
	// Default: wait on a timer or context cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Caller orchestrates guarded calls: breaker gate, attempt loop with
// per-attempt timeouts, backoff between attempts, and terminal event
// reporting. Safe for concurrent use.
type Caller struct {
	policy         *BackoffPolicy
	breaker        *Breaker
	transport      Transport
	attemptTimeout time.Duration
	retryIf        func(error) bool
	sink           EventSink
	limiter        *RateLimiter
	bulkhead       *Bulkhead
	onRetry        func(int, error, time.Duration)
	sleep          func(context.Context, time.Duration) error
}

// NewCaller creates a Caller around the given transport. Configuration
// errors are reported here, eagerly; Call itself never fails hard.
func NewCaller(transport Transport, config CallerConfig) (*Caller, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}

	policy, err := NewBackoffPolicy(config.Backoff)
	if err != nil {
		return nil, err
	}

	breaker := config.Registry
	if breaker == nil {
		breaker, err = NewBreaker(config.Breaker)
		if err != nil {
			return nil, err
		}
	}

	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = 30 * time.Second
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	if config.Sink == nil {
		config.Sink = NopSink{}
	}
	if config.Sleep == nil {
		config.Sleep = sleepContext
	}

	return &Caller{
		policy:         policy,
		breaker:        breaker,
		transport:      transport,
		attemptTimeout: config.AttemptTimeout,
		retryIf:        config.RetryIf,
		sink:           config.Sink,
		limiter:        config.RateLimiter,
		bulkhead:       config.Bulkhead,
		onRetry:        config.OnRetry,
		sleep:          config.Sleep,
	}, nil
}

// Breaker returns the caller's breaker registry, exposing the
// per-endpoint inspection surface.
func (c *Caller) Breaker() *Breaker {
	return c.breaker
}

// Call runs one guarded call and returns its outcome. The outcome is
// also reported exactly once to the event sink. Transport failures are
// absorbed into the outcome, never propagated as faults.
func (c *Caller) Call(ctx context.Context, req Request) Outcome {
	if req.CallID == "" {
		req.CallID = uuid.NewString()
	}

	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return c.finish(ctx, req, rejectedOutcome(err, ReasonRateLimited))
		}
	}

	if c.bulkhead != nil {
		if err := c.bulkhead.Acquire(ctx); err != nil {
			return c.finish(ctx, req, rejectedOutcome(err, ReasonBulkheadFull))
		}
		defer c.bulkhead.Release()
	}

	if !c.breaker.Allow(req.Endpoint) {
		return c.finish(ctx, req, Outcome{
			ErrorReason: ReasonCircuitOpen,
			Err:         ErrCircuitOpen,
		})
	}

	max := c.policy.MaxAttempts()

	var lastErr error
	var latency time.Duration

	for attempt := 1; attempt <= max; attempt++ {
		start := time.Now()
		resp, err := c.attempt(ctx, req)
		latency = time.Since(start)

		if err == nil {
			c.breaker.Record(req.Endpoint, true)
			return c.finish(ctx, req, Outcome{
				Success:      true,
				AttemptsUsed: attempt,
				Latency:      latency,
				Response:     resp,
			})
		}
		lastErr = err

		if !c.retryIf(err) {
			c.breaker.Record(req.Endpoint, false)
			return c.finish(ctx, req, Outcome{
				AttemptsUsed: attempt,
				Latency:      latency,
				ErrorReason:  reasonFor(err),
				Err:          err,
			})
		}

		if attempt < max {
			delay := c.policy.DelayFor(attempt)
			if c.onRetry != nil {
				c.onRetry(attempt, err, delay)
			}
			if werr := c.sleep(ctx, delay); werr != nil {
				c.breaker.AbortTrial(req.Endpoint)
				return c.finish(ctx, req, Outcome{
					AttemptsUsed: attempt,
					Latency:      latency,
					ErrorReason:  ReasonCancelled,
					Err:          errors.Join(ErrCancelled, werr),
				})
			}
		}
	}

	c.breaker.Record(req.Endpoint, false)
	return c.finish(ctx, req, Outcome{
		AttemptsUsed: max,
		Latency:      latency,
		ErrorReason:  reasonFor(lastErr),
		Err:          errors.Join(ErrExhausted, lastErr),
	})
}

// attempt runs a single transport attempt under the per-attempt timeout
// and converts error-status responses into errors.
func (c *Caller) attempt(ctx context.Context, req Request) (*Response, error) {
	actx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	resp, err := c.transport.Do(actx, req.Endpoint, req.Payload)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %w", ErrAttemptTimeout, err)
		}
		return nil, err
	}

	if resp != nil && resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return resp, nil
}

// finish stamps identity onto the outcome and reports it to the sink.
func (c *Caller) finish(ctx context.Context, req Request, out Outcome) Outcome {
	out.Endpoint = req.Endpoint
	out.CallID = req.CallID

	c.notify(ctx, Event{
		Name:        eventNameFor(out),
		Endpoint:    out.Endpoint,
		CallID:      out.CallID,
		Attempts:    out.AttemptsUsed,
		Latency:     out.Latency,
		Success:     out.Success,
		ErrorReason: out.ErrorReason,
		Time:        time.Now(),
	})

	return out
}

// notify delivers an event, recovering sink panics so they cannot
// affect the returned outcome.
func (c *Caller) notify(ctx context.Context, event Event) {
	defer func() {
		_ = recover()
	}()
	c.sink.Notify(ctx, event)
}

func eventNameFor(out Outcome) string {
	switch {
	case out.Success:
		return EventCallSucceeded
	case out.ErrorReason == ReasonCancelled:
		return EventCallCancelled
	case out.AttemptsUsed == 0:
		return EventCallRejected
	default:
		return EventCallFailed
	}
}

// rejectedOutcome builds the outcome for a call rejected by a limiter
// stage. Context cancellation during the stage is reported as cancelled
// rather than rejected.
func rejectedOutcome(err error, reason string) Outcome {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Outcome{
			ErrorReason: ReasonCancelled,
			Err:         errors.Join(ErrCancelled, err),
		}
	}
	return Outcome{ErrorReason: reason, Err: err}
}

func reasonFor(err error) string {
	if errors.Is(err, ErrAttemptTimeout) {
		return ReasonTimeout
	}
	return ReasonTransportError
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

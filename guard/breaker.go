package guard

import (
	"sync"
	"time"
)

// Phase represents a circuit breaker phase.
type Phase int

const (
	// PhaseClosed means calls to the endpoint flow normally.
	PhaseClosed Phase = iota
	// PhaseOpen means calls to the endpoint are suspended.
	PhaseOpen
	// PhaseHalfOpen means a single trial call is probing recovery.
	PhaseHalfOpen
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpen:
		return "open"
	case PhaseHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker. The same configuration applies to
// every endpoint tracked by the registry.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures, while
	// closed, that opens the circuit.
	// Default: 3
	FailureThreshold int

	// FailureWindow is the nominal window for counting failures. By
	// default it is recorded but does not decay the failure count:
	// consecutive failures accumulate until a success or until the
	// circuit opens. Set WindowedCounting to change that.
	// Default: 60 seconds
	FailureWindow time.Duration

	// ResetTimeout is the cooldown before a trial call is allowed after
	// the circuit opens.
	// Default: 30 seconds
	ResetTimeout time.Duration

	// WindowedCounting, when true, restarts the failure count whenever
	// the previous failure streak began more than FailureWindow ago.
	WindowedCounting bool

	// OnStateChange is called, under the registry lock, whenever an
	// endpoint's phase changes.
	OnStateChange func(endpoint string, from, to Phase)

	// Now supplies the current time. Injectable for tests.
	// Default: time.Now
	Now func() time.Time
}

// BreakerState is a snapshot of one endpoint's circuit state.
type BreakerState struct {
	// Phase is the current phase.
	Phase Phase

	// FailureCount is the consecutive-failure counter. Meaningful only
	// while closed.
	FailureCount int

	// LastFailure is when the most recent failure was recorded. Zero if
	// no failure has been seen.
	LastFailure time.Time

	// NextAttempt is the earliest time a trial call is permitted. Set
	// only while open.
	NextAttempt time.Time

	// WindowStart is when the current failure streak began.
	WindowStart time.Time
}

// endpointState is the mutable per-endpoint record. Guarded by Breaker.mu.
type endpointState struct {
	phase        Phase
	failures     int
	lastFailure  time.Time
	nextAttempt  time.Time
	windowStart  time.Time
	trialPending bool
}

// Breaker is a registry of per-endpoint circuit breaker state machines.
// State is created lazily on the first recorded result for an endpoint
// and lives for the Breaker's lifetime.
//
// All operations are safe for concurrent use; a single mutex serializes
// access to the registry.
type Breaker struct {
	config BreakerConfig

	mu        sync.Mutex
	endpoints map[string]*endpointState
}

// NewBreaker creates a Breaker, applying defaults for unset fields.
func NewBreaker(config BreakerConfig) (*Breaker, error) {
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 3
	}
	if config.FailureWindow == 0 {
		config.FailureWindow = 60 * time.Second
	}
	if config.ResetTimeout == 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	if config.FailureThreshold < 1 {
		return nil, ErrInvalidThreshold
	}

	return &Breaker{
		config:    config,
		endpoints: make(map[string]*endpointState),
	}, nil
}

// Allow reports whether a call to the endpoint may proceed.
//
// A closed or never-observed endpoint always proceeds. An open endpoint
// proceeds only once its cooldown has elapsed, at which point the circuit
// moves to half-open and exactly one trial call is admitted; concurrent
// callers observing the half-open phase are rejected until the trial
// resolves via Record or is abandoned via AbortTrial.
func (b *Breaker) Allow(endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.endpoints[endpoint]
	if !ok {
		return true
	}

	switch st.phase {
	case PhaseClosed:
		return true

	case PhaseOpen:
		now := b.config.Now()
		if now.Before(st.nextAttempt) {
			return false
		}
		b.setPhase(endpoint, st, PhaseHalfOpen)
		st.trialPending = true
		return true

	case PhaseHalfOpen:
		if st.trialPending {
			return false
		}
		st.trialPending = true
		return true
	}

	return true
}

// Record reports the terminal result of a call to the endpoint. Success
// closes the circuit and clears the failure count regardless of the
// prior phase. A failure while closed increments the consecutive-failure
// count and opens the circuit at the threshold; a failure while
// half-open reopens it immediately with a fresh cooldown.
func (b *Breaker) Record(endpoint string, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.config.Now()

	st, ok := b.endpoints[endpoint]
	if !ok {
		st = &endpointState{windowStart: now}
		b.endpoints[endpoint] = st
	}
	st.trialPending = false

	if success {
		b.setPhase(endpoint, st, PhaseClosed)
		st.failures = 0
		st.nextAttempt = time.Time{}
		st.windowStart = now
		return
	}

	switch st.phase {
	case PhaseClosed:
		if b.config.WindowedCounting && st.failures > 0 &&
			now.Sub(st.windowStart) > b.config.FailureWindow {
			st.failures = 0
		}
		if st.failures == 0 {
			st.windowStart = now
		}
		st.failures++
		st.lastFailure = now
		if st.failures >= b.config.FailureThreshold {
			b.setPhase(endpoint, st, PhaseOpen)
			st.nextAttempt = now.Add(b.config.ResetTimeout)
		}

	case PhaseHalfOpen:
		st.lastFailure = now
		b.setPhase(endpoint, st, PhaseOpen)
		st.nextAttempt = now.Add(b.config.ResetTimeout)
	}
}

// AbortTrial abandons a pending half-open trial without judging the
// endpoint. The circuit returns to open with its existing cooldown
// deadline, so a later call is admitted as a fresh trial. Cancellation
// says nothing about endpoint health; the failure count is untouched.
// No-op unless a trial is pending on the endpoint.
func (b *Breaker) AbortTrial(endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.endpoints[endpoint]
	if !ok || st.phase != PhaseHalfOpen || !st.trialPending {
		return
	}
	st.trialPending = false
	b.setPhase(endpoint, st, PhaseOpen)
}

// State returns a snapshot of the endpoint's circuit state. The second
// return value is false if the endpoint has never recorded a result.
func (b *Breaker) State(endpoint string) (BreakerState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.endpoints[endpoint]
	if !ok {
		return BreakerState{}, false
	}
	return snapshot(st), true
}

// States returns snapshots for every observed endpoint.
func (b *Breaker) States() map[string]BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]BreakerState, len(b.endpoints))
	for endpoint, st := range b.endpoints {
		out[endpoint] = snapshot(st)
	}
	return out
}

// Reset forces the endpoint's circuit back to closed with a zero failure
// count. Returns false if the endpoint has never been observed.
func (b *Breaker) Reset(endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.endpoints[endpoint]
	if !ok {
		return false
	}
	b.setPhase(endpoint, st, PhaseClosed)
	st.failures = 0
	st.nextAttempt = time.Time{}
	st.trialPending = false
	return true
}

func (b *Breaker) setPhase(endpoint string, st *endpointState, to Phase) {
	from := st.phase
	if from == to {
		return
	}
	st.phase = to
	if b.config.OnStateChange != nil {
		b.config.OnStateChange(endpoint, from, to)
	}
}

func snapshot(st *endpointState) BreakerState {
	return BreakerState{
		Phase:        st.phase,
		FailureCount: st.failures,
		LastFailure:  st.lastFailure,
		NextAttempt:  st.nextAttempt,
		WindowStart:  st.windowStart,
	}
}

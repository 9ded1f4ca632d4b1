package guard

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffConfig configures a BackoffPolicy.
type BackoffConfig struct {
	// MaxAttempts is the total number of attempts including the first.
	// Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the second attempt.
	// Default: 2 seconds
	BaseDelay time.Duration

	// MaxDelay caps the computed delay.
	// Default: 60 seconds
	MaxDelay time.Duration

	// JitterFraction is the fractional random perturbation applied to the
	// capped delay, in [0, 1]. Zero disables jitter.
	JitterFraction float64

	// Rand supplies random values in [0, 1) for jitter. Injectable so
	// delays are deterministic in tests.
	// Default: math/rand/v2 Float64
	Rand func() float64
}

// BackoffPolicy computes retry delays using capped exponential backoff
// with symmetric jitter. Immutable once constructed.
type BackoffPolicy struct {
	maxAttempts int
	base        time.Duration
	max         time.Duration
	jitter      float64
	rand        func() float64
}

// NewBackoffPolicy creates a BackoffPolicy, applying defaults for unset
// fields and rejecting invalid configuration.
func NewBackoffPolicy(config BackoffConfig) (*BackoffPolicy, error) {
	if config.MaxAttempts == 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay == 0 {
		config.BaseDelay = 2 * time.Second
	}
	if config.MaxDelay == 0 {
		config.MaxDelay = 60 * time.Second
	}
	if config.Rand == nil {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		config.Rand = rand.Float64
	}

	if config.MaxAttempts < 1 {
		return nil, ErrInvalidAttempts
	}
	if config.BaseDelay < 0 || config.MaxDelay < 0 {
		return nil, ErrInvalidDelay
	}
	if config.JitterFraction < 0 || config.JitterFraction > 1 {
		return nil, ErrInvalidJitter
	}

	return &BackoffPolicy{
		maxAttempts: config.MaxAttempts,
		base:        config.BaseDelay,
		max:         config.MaxDelay,
		jitter:      config.JitterFraction,
		rand:        config.Rand,
	}, nil
}

// MaxAttempts returns the total attempt budget.
func (p *BackoffPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// DelayFor returns the delay to wait after the given 1-based attempt,
// before attempt+1 runs. The result lies within
// [capped*(1-jitter), capped*(1+jitter)] where
// capped = min(base*2^(attempt-1), max), floored at zero.
//
// DelayFor only computes a value; the caller owns the actual wait.
func (p *BackoffPolicy) DelayFor(attempt int) time.Duration {
	raw := float64(p.base) * math.Pow(2, float64(attempt-1))
	capped := math.Min(raw, float64(p.max))

	if p.jitter > 0 {
		band := capped * p.jitter
		// Uniform over [capped-band, capped+band].
		capped += (2*p.rand() - 1) * band
	}

	if capped < 0 {
		return 0
	}
	return time.Duration(capped)
}

package guard

import (
	"errors"
	"testing"
	"time"
)

func TestNewBackoffPolicy_Defaults(t *testing.T) {
	p, err := NewBackoffPolicy(BackoffConfig{})
	if err != nil {
		t.Fatalf("NewBackoffPolicy() error = %v", err)
	}

	if p.MaxAttempts() != 3 {
		t.Errorf("MaxAttempts() = %d, want 3", p.MaxAttempts())
	}
	if p.base != 2*time.Second {
		t.Errorf("base = %v, want 2s", p.base)
	}
	if p.max != 60*time.Second {
		t.Errorf("max = %v, want 60s", p.max)
	}
	if p.jitter != 0 {
		t.Errorf("jitter = %f, want 0", p.jitter)
	}
}

func TestNewBackoffPolicy_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		config BackoffConfig
		want   error
	}{
		{"negative attempts", BackoffConfig{MaxAttempts: -1}, ErrInvalidAttempts},
		{"negative base delay", BackoffConfig{BaseDelay: -time.Second}, ErrInvalidDelay},
		{"negative max delay", BackoffConfig{MaxDelay: -time.Second}, ErrInvalidDelay},
		{"jitter above one", BackoffConfig{JitterFraction: 1.5}, ErrInvalidJitter},
		{"negative jitter", BackoffConfig{JitterFraction: -0.1}, ErrInvalidJitter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBackoffPolicy(tt.config)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewBackoffPolicy() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBackoffPolicy_DelayFor_NoJitter(t *testing.T) {
	p, err := NewBackoffPolicy(BackoffConfig{
		MaxAttempts: 10,
		BaseDelay:   2 * time.Second,
		MaxDelay:    60 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewBackoffPolicy() error = %v", err)
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second}, // 64s capped at 60s
		{7, 60 * time.Second},
	}

	for _, tt := range tests {
		if got := p.DelayFor(tt.attempt); got != tt.want {
			t.Errorf("DelayFor(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffPolicy_DelayFor_JitterBounds(t *testing.T) {
	p, err := NewBackoffPolicy(BackoffConfig{
		MaxAttempts:    5,
		BaseDelay:      2 * time.Second,
		MaxDelay:       60 * time.Second,
		JitterFraction: 0.1,
	})
	if err != nil {
		t.Fatalf("NewBackoffPolicy() error = %v", err)
	}

	for attempt := 1; attempt < 5; attempt++ {
		capped := 2 * time.Second << (attempt - 1)
		if capped > 60*time.Second {
			capped = 60 * time.Second
		}
		lo := time.Duration(float64(capped) * 0.9)
		hi := time.Duration(float64(capped) * 1.1)

		for i := 0; i < 100; i++ {
			got := p.DelayFor(attempt)
			if got < lo || got > hi {
				t.Fatalf("DelayFor(%d) = %v, want within [%v, %v]", attempt, got, lo, hi)
			}
		}
	}
}

func TestBackoffPolicy_DelayFor_InjectedRand(t *testing.T) {
	tests := []struct {
		name string
		rand float64
		want time.Duration
	}{
		{"low end", 0.0, 1800 * time.Millisecond},  // 2s * (1 - 0.1)
		{"midpoint", 0.5, 2 * time.Second},         // no perturbation
		{"high end", 1.0, 2200 * time.Millisecond}, // 2s * (1 + 0.1)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewBackoffPolicy(BackoffConfig{
				BaseDelay:      2 * time.Second,
				MaxDelay:       60 * time.Second,
				JitterFraction: 0.1,
				Rand:           func() float64 { return tt.rand },
			})
			if err != nil {
				t.Fatalf("NewBackoffPolicy() error = %v", err)
			}

			if got := p.DelayFor(1); got != tt.want {
				t.Errorf("DelayFor(1) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackoffPolicy_DelayFor_FlooredAtZero(t *testing.T) {
	p, err := NewBackoffPolicy(BackoffConfig{
		BaseDelay:      time.Second,
		MaxDelay:       time.Second,
		JitterFraction: 1.0,
		Rand:           func() float64 { return 0 },
	})
	if err != nil {
		t.Fatalf("NewBackoffPolicy() error = %v", err)
	}

	if got := p.DelayFor(1); got != 0 {
		t.Errorf("DelayFor(1) = %v, want 0", got)
	}
}

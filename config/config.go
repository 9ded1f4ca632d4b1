package config

import (
	"fmt"
	"time"

	"github.com/jonwraymond/callguard/guard"
	"github.com/jonwraymond/callguard/httptransport"
	"github.com/jonwraymond/callguard/observe"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Service       ServiceConfig       `yaml:"service"`
	Retry         RetryConfig         `yaml:"retry"`
	Breaker       BreakerConfig       `yaml:"breaker"`
	Call          CallConfig          `yaml:"call"`
	Transport     TransportConfig     `yaml:"transport"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Bulkhead      BulkheadConfig      `yaml:"bulkhead"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServiceConfig identifies the deployment.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// RetryConfig holds backoff settings.
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	BaseDelay   Duration `yaml:"base_delay"`
	MaxDelay    Duration `yaml:"max_delay"`

	// JitterFraction is a pointer so an explicit 0 (jitter disabled) can
	// be told apart from an absent key (default 0.1).
	JitterFraction *float64 `yaml:"jitter_fraction"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	FailureThreshold int      `yaml:"failure_threshold"`
	FailureWindow    Duration `yaml:"failure_window"`
	ResetTimeout     Duration `yaml:"reset_timeout"`
	WindowedCounting bool     `yaml:"windowed_counting"`
}

// CallConfig holds per-call settings.
type CallConfig struct {
	AttemptTimeout Duration `yaml:"attempt_timeout"`
}

// TransportConfig holds HTTP transport settings.
type TransportConfig struct {
	APIKey       string `yaml:"api_key"`
	APIKeyHeader string `yaml:"api_key_header"`
	BearerToken  string `yaml:"bearer_token"`
	UserAgent    string `yaml:"user_agent"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// RateLimitConfig holds client-side rate limiting settings.
type RateLimitConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Rate        float64  `yaml:"rate"`
	Burst       int      `yaml:"burst"`
	WaitOnLimit bool     `yaml:"wait_on_limit"`
	MaxWait     Duration `yaml:"max_wait"`
}

// BulkheadConfig holds concurrency limiting settings.
type BulkheadConfig struct {
	Enabled       bool     `yaml:"enabled"`
	MaxConcurrent int64    `yaml:"max_concurrent"`
	MaxWait       Duration `yaml:"max_wait"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// TracingConfig configures the tracing subsystem.
type TracingConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Exporter  string  `yaml:"exporter"`
	SamplePct float64 `yaml:"sample_pct"`
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
}

// defaultJitterFraction applies when the jitter_fraction key is absent.
const defaultJitterFraction = 0.1

func (c *AppConfig) applyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "callguard"
	}

	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = Duration(2 * time.Second)
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = Duration(60 * time.Second)
	}
	if c.Retry.JitterFraction == nil {
		jitter := defaultJitterFraction
		c.Retry.JitterFraction = &jitter
	}

	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = 3
	}
	if c.Breaker.FailureWindow == 0 {
		c.Breaker.FailureWindow = Duration(60 * time.Second)
	}
	if c.Breaker.ResetTimeout == 0 {
		c.Breaker.ResetTimeout = Duration(30 * time.Second)
	}

	if c.Call.AttemptTimeout == 0 {
		c.Call.AttemptTimeout = Duration(30 * time.Second)
	}

	if c.RateLimit.Rate == 0 {
		c.RateLimit.Rate = 100
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	if c.RateLimit.MaxWait == 0 {
		c.RateLimit.MaxWait = Duration(time.Second)
	}

	if c.Bulkhead.MaxConcurrent == 0 {
		c.Bulkhead.MaxConcurrent = 10
	}
}

// Validate checks cross-field constraints not covered by the component
// constructors.
func (c *AppConfig) Validate() error {
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: max_attempts must be at least 1", ErrInvalidRetry)
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidRetry)
	}
	if j := *c.Retry.JitterFraction; j < 0 || j > 1 {
		return fmt.Errorf("%w: jitter_fraction must be in [0, 1]", ErrInvalidRetry)
	}

	if c.Breaker.FailureThreshold < 1 {
		return fmt.Errorf("%w: failure_threshold must be at least 1", ErrInvalidBreaker)
	}

	if c.RateLimit.Enabled && c.RateLimit.Rate <= 0 {
		return fmt.Errorf("%w: rate must be positive", ErrInvalidRateLimit)
	}

	if c.Bulkhead.Enabled && c.Bulkhead.MaxConcurrent < 1 {
		return fmt.Errorf("%w: max_concurrent must be at least 1", ErrInvalidBulkhead)
	}

	obsCfg := c.ObserveConfig()
	return obsCfg.Validate()
}

// CallerConfig converts the loaded configuration into a guard caller
// configuration. The Sink is left nil for the caller to wire separately.
func (c *AppConfig) CallerConfig() guard.CallerConfig {
	cfg := guard.CallerConfig{
		Backoff: guard.BackoffConfig{
			MaxAttempts:    c.Retry.MaxAttempts,
			BaseDelay:      c.Retry.BaseDelay.Std(),
			MaxDelay:       c.Retry.MaxDelay.Std(),
			JitterFraction: *c.Retry.JitterFraction,
		},
		Breaker: guard.BreakerConfig{
			FailureThreshold: c.Breaker.FailureThreshold,
			FailureWindow:    c.Breaker.FailureWindow.Std(),
			ResetTimeout:     c.Breaker.ResetTimeout.Std(),
			WindowedCounting: c.Breaker.WindowedCounting,
		},
		AttemptTimeout: c.Call.AttemptTimeout.Std(),
	}

	if c.RateLimit.Enabled {
		cfg.RateLimiter = guard.NewRateLimiter(guard.RateLimiterConfig{
			Rate:        c.RateLimit.Rate,
			Burst:       c.RateLimit.Burst,
			WaitOnLimit: c.RateLimit.WaitOnLimit,
			MaxWait:     c.RateLimit.MaxWait.Std(),
		})
	}

	if c.Bulkhead.Enabled {
		cfg.Bulkhead = guard.NewBulkhead(guard.BulkheadConfig{
			MaxConcurrent: int(c.Bulkhead.MaxConcurrent),
			MaxWait:       c.Bulkhead.MaxWait.Std(),
		})
	}

	return cfg
}

// TransportConfig converts the loaded configuration into an HTTP transport
// configuration.
func (c *AppConfig) TransportConfig() httptransport.Config {
	return httptransport.Config{
		APIKey:       c.Transport.APIKey,
		APIKeyHeader: c.Transport.APIKeyHeader,
		BearerToken:  c.Transport.BearerToken,
		UserAgent:    c.Transport.UserAgent,
		MaxBodyBytes: c.Transport.MaxBodyBytes,
	}
}

// ObserveConfig converts the loaded configuration into an observability
// configuration.
func (c *AppConfig) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: c.Service.Name,
		Version:     c.Service.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Observability.Tracing.Enabled,
			Exporter:  c.Observability.Tracing.Exporter,
			SamplePct: c.Observability.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Observability.Metrics.Enabled,
			Exporter: c.Observability.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.Observability.Logging.Enabled,
			Level:   c.Observability.Logging.Level,
		},
	}
}

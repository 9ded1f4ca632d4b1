package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "callguard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
service:
  name: flag-auditor
  version: 2.1.0
retry:
  max_attempts: 5
  base_delay: 500ms
  max_delay: 10s
  jitter_fraction: 0.2
breaker:
  failure_threshold: 4
  failure_window: 2m
  reset_timeout: 45s
  windowed_counting: true
call:
  attempt_timeout: 5s
transport:
  api_key_header: X-Audit-Key
  user_agent: flag-auditor/2.1
  max_body_bytes: 4096
rate_limit:
  enabled: true
  rate: 50
  burst: 5
bulkhead:
  enabled: true
  max_concurrent: 8
observability:
  logging:
    enabled: true
    level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Name != "flag-auditor" || cfg.Service.Version != "2.1.0" {
		t.Errorf("Service = %+v", cfg.Service)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay.Std() != 500*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 500ms", cfg.Retry.BaseDelay)
	}
	if cfg.Retry.MaxDelay.Std() != 10*time.Second {
		t.Errorf("MaxDelay = %v, want 10s", cfg.Retry.MaxDelay)
	}
	if *cfg.Retry.JitterFraction != 0.2 {
		t.Errorf("JitterFraction = %v, want 0.2", *cfg.Retry.JitterFraction)
	}
	if cfg.Breaker.FailureThreshold != 4 || cfg.Breaker.FailureWindow.Std() != 2*time.Minute {
		t.Errorf("Breaker = %+v", cfg.Breaker)
	}
	if !cfg.Breaker.WindowedCounting {
		t.Error("WindowedCounting should be true")
	}
	if cfg.Call.AttemptTimeout.Std() != 5*time.Second {
		t.Errorf("AttemptTimeout = %v, want 5s", cfg.Call.AttemptTimeout)
	}
	if cfg.Transport.APIKeyHeader != "X-Audit-Key" {
		t.Errorf("APIKeyHeader = %q", cfg.Transport.APIKeyHeader)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Rate != 50 {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if !cfg.Bulkhead.Enabled || cfg.Bulkhead.MaxConcurrent != 8 {
		t.Errorf("Bulkhead = %+v", cfg.Bulkhead)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
service:
  name: callguard
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay.Std() != 2*time.Second {
		t.Errorf("BaseDelay = %v, want 2s", cfg.Retry.BaseDelay)
	}
	if cfg.Retry.MaxDelay.Std() != 60*time.Second {
		t.Errorf("MaxDelay = %v, want 60s", cfg.Retry.MaxDelay)
	}
	if *cfg.Retry.JitterFraction != 0.1 {
		t.Errorf("JitterFraction = %v, want 0.1", *cfg.Retry.JitterFraction)
	}
	if cfg.Breaker.FailureThreshold != 3 {
		t.Errorf("FailureThreshold = %d, want 3", cfg.Breaker.FailureThreshold)
	}
	if cfg.Breaker.FailureWindow.Std() != 60*time.Second {
		t.Errorf("FailureWindow = %v, want 60s", cfg.Breaker.FailureWindow)
	}
	if cfg.Breaker.ResetTimeout.Std() != 30*time.Second {
		t.Errorf("ResetTimeout = %v, want 30s", cfg.Breaker.ResetTimeout)
	}
	if cfg.Call.AttemptTimeout.Std() != 30*time.Second {
		t.Errorf("AttemptTimeout = %v, want 30s", cfg.Call.AttemptTimeout)
	}
}

func TestLoad_ExplicitZeroJitter(t *testing.T) {
	path := writeConfig(t, `
retry:
  jitter_fraction: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg.Retry.JitterFraction != 0 {
		t.Errorf("JitterFraction = %v, want explicit 0 preserved", *cfg.Retry.JitterFraction)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("CALLGUARD_TEST_API_KEY", "sk-from-env")

	path := writeConfig(t, `
transport:
  api_key: ${CALLGUARD_TEST_API_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Transport.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want sk-from-env", cfg.Transport.APIKey)
	}
}

func TestLoad_BareSecondsDuration(t *testing.T) {
	path := writeConfig(t, `
retry:
  base_delay: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Retry.BaseDelay.Std() != 4*time.Second {
		t.Errorf("BaseDelay = %v, want 4s", cfg.Retry.BaseDelay)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
retry:
  base_delay: soon
`)

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want duration parse failure")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() error = nil, want read failure")
	}
}

func TestParse_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "jitter out of range",
			yaml:    "retry:\n  jitter_fraction: 1.5\n",
			wantErr: ErrInvalidRetry,
		},
		{
			name:    "negative attempts",
			yaml:    "retry:\n  max_attempts: -2\n",
			wantErr: ErrInvalidRetry,
		},
		{
			name:    "negative threshold",
			yaml:    "breaker:\n  failure_threshold: -1\n",
			wantErr: ErrInvalidBreaker,
		},
		{
			name:    "rate limit enabled with negative rate",
			yaml:    "rate_limit:\n  enabled: true\n  rate: -5\n",
			wantErr: ErrInvalidRateLimit,
		},
		{
			name:    "bulkhead enabled with negative slots",
			yaml:    "bulkhead:\n  enabled: true\n  max_concurrent: -1\n",
			wantErr: ErrInvalidBulkhead,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

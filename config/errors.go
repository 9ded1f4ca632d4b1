package config

import "errors"

var (
	// ErrInvalidRetry indicates invalid retry settings.
	ErrInvalidRetry = errors.New("config: invalid retry settings")

	// ErrInvalidBreaker indicates invalid circuit breaker settings.
	ErrInvalidBreaker = errors.New("config: invalid breaker settings")

	// ErrInvalidRateLimit indicates invalid rate limit settings.
	ErrInvalidRateLimit = errors.New("config: invalid rate limit settings")

	// ErrInvalidBulkhead indicates invalid bulkhead settings.
	ErrInvalidBulkhead = errors.New("config: invalid bulkhead settings")
)

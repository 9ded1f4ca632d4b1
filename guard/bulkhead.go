package guard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures the concurrency bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of calls in flight at once.
	// Default: 10
	MaxConcurrent int

	// MaxWait is the maximum time to wait for a slot.
	// Default: 0 (reject immediately)
	MaxWait time.Duration
}

// Bulkhead caps the number of concurrent guarded calls. An optional
// Caller stage; calls rejected here never reach the breaker or the
// transport.
type Bulkhead struct {
	config BulkheadConfig
	sem    *semaphore.Weighted

	mu       sync.Mutex
	active   int
	rejected int64
}

// NewBulkhead creates a bulkhead, applying defaults for unset fields.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}

	return &Bulkhead{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Acquire claims a slot, waiting up to MaxWait when configured. Returns
// ErrBulkheadFull when no slot becomes available.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	if b.sem.TryAcquire(1) {
		b.noteAcquired()
		return nil
	}

	if b.config.MaxWait <= 0 {
		b.noteRejected()
		return ErrBulkheadFull
	}

	wctx, cancel := context.WithTimeout(ctx, b.config.MaxWait)
	defer cancel()

	if err := b.sem.Acquire(wctx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.noteRejected()
		return ErrBulkheadFull
	}
	b.noteAcquired()
	return nil
}

// Release returns a slot.
func (b *Bulkhead) Release() {
	b.sem.Release(1)
	b.mu.Lock()
	b.active--
	b.mu.Unlock()
}

// Stats reports current bulkhead usage.
func (b *Bulkhead) Stats() BulkheadStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadStats{
		Active:        b.active,
		Available:     b.config.MaxConcurrent - b.active,
		MaxConcurrent: b.config.MaxConcurrent,
		Rejected:      b.rejected,
	}
}

// BulkheadStats contains bulkhead usage counters.
type BulkheadStats struct {
	Active        int
	Available     int
	MaxConcurrent int
	Rejected      int64
}

func (b *Bulkhead) noteAcquired() {
	b.mu.Lock()
	b.active++
	b.mu.Unlock()
}

func (b *Bulkhead) noteRejected() {
	b.mu.Lock()
	b.rejected++
	b.mu.Unlock()
}

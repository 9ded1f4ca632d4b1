package guard

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	bh := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})
	ctx := context.Background()

	if err := bh.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := bh.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := bh.Acquire(ctx); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire() error = %v, want ErrBulkheadFull", err)
	}

	stats := bh.Stats()
	if stats.Active != 2 || stats.Rejected != 1 {
		t.Errorf("Stats() = %+v, want 2 active and 1 rejected", stats)
	}

	bh.Release()
	if err := bh.Acquire(ctx); err != nil {
		t.Errorf("Acquire() after release error = %v", err)
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	bh := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 1,
		MaxWait:       time.Second,
	})
	ctx := context.Background()

	if err := bh.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		bh.Release()
	}()

	if err := bh.Acquire(ctx); err != nil {
		t.Errorf("Acquire() with wait error = %v", err)
	}
}

func TestBulkhead_WaitTimesOut(t *testing.T) {
	bh := NewBulkhead(BulkheadConfig{
		MaxConcurrent: 1,
		MaxWait:       10 * time.Millisecond,
	})
	ctx := context.Background()

	if err := bh.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer bh.Release()

	if err := bh.Acquire(ctx); !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire() error = %v, want ErrBulkheadFull", err)
	}
}

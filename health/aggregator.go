package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// AggregatorConfig configures the composite check.
type AggregatorConfig struct {
	// Timeout bounds a full CheckAll pass.
	// Default: 10 seconds
	Timeout time.Duration

	// Sequential runs checks one at a time instead of fanning out.
	Sequential bool
}

// Aggregator runs a set of named checkers and reduces their results to
// one overall status. Safe for concurrent use.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewAggregator creates an aggregator with defaults applied.
func NewAggregator(config AggregatorConfig) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Aggregator{
		config:   config,
		checkers: make(map[string]Checker),
	}
}

// Register adds a checker under the given name, replacing any previous
// registration with that name.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers[name] = checker
}

// Names returns the registered checker names in sorted order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.checkers))
	for name := range a.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs the single named checker.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrCheckerNotFound, name)
	}
	return a.run(ctx, checker), nil
}

// CheckAll runs every registered checker under the aggregate timeout
// and returns the results keyed by name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make(map[string]Checker, len(a.checkers))
	for name, checker := range a.checkers {
		checkers[name] = checker
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if a.config.Sequential {
		for name, checker := range checkers {
			results[name] = a.run(ctx, checker)
		}
		return results
	}

	type keyed struct {
		name   string
		result Result
	}
	ch := make(chan keyed, len(checkers))
	for name, checker := range checkers {
		go func(name string, checker Checker) {
			ch <- keyed{name: name, result: a.run(ctx, checker)}
		}(name, checker)
	}
	for range checkers {
		k := <-ch
		results[k.name] = k.result
	}
	return results
}

// OverallStatus reduces a result set to its worst status. An empty set
// is healthy.
func OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, result := range results {
		if result.Status > overall {
			overall = result.Status
		}
	}
	return overall
}

// Report bundles the reduced status with the per-checker results. It is
// the readiness view served by the HTTP handlers.
type Report struct {
	Status Status
	Checks map[string]Result
}

// Report runs every checker and reduces the results.
func (a *Aggregator) Report(ctx context.Context) Report {
	results := a.CheckAll(ctx)
	return Report{Status: OverallStatus(results), Checks: results}
}

// run executes one checker, guarding against checkers that ignore
// context cancellation.
func (a *Aggregator) run(ctx context.Context, checker Checker) Result {
	start := time.Now()

	done := make(chan Result, 1)
	go func() {
		done <- checker.Check(ctx)
	}()

	select {
	case result := <-done:
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		return result.WithDuration(time.Since(start))
	case <-ctx.Done():
		return Unhealthy("check timed out", ErrCheckTimeout).WithDuration(time.Since(start))
	}
}

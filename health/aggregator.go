package health

import (
	"context"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds a full aggregation when none is configured.
const DefaultCheckTimeout = 5 * time.Second

// NamedResult is a checker result tagged with the checker's name.
type NamedResult struct {
	Name string
	Result
}

// Aggregator runs a set of checkers and folds their results.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Ordering: CheckAll returns results in registration order.
type Aggregator struct {
	timeout time.Duration

	mu       sync.RWMutex
	checkers []Checker
}

// NewAggregator creates an aggregator bounding each CheckAll by timeout.
// A non-positive timeout selects DefaultCheckTimeout.
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Aggregator{timeout: timeout}
}

// Register adds a checker, replacing any checker with the same name in place.
func (a *Aggregator) Register(c Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, existing := range a.checkers {
		if existing.Name() == c.Name() {
			a.checkers[i] = c
			return
		}
	}
	a.checkers = append(a.checkers, c)
}

// Names returns the registered checker names in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.checkers))
	for i, c := range a.checkers {
		names[i] = c.Name()
	}
	return names
}

// CheckAll runs every checker concurrently and returns the results in
// registration order. Checkers still running at the deadline are reported
// unhealthy with ErrCheckTimeout.
func (a *Aggregator) CheckAll(ctx context.Context) []NamedResult {
	a.mu.RLock()
	checkers := append([]Checker(nil), a.checkers...)
	a.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	results := make([]NamedResult, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = NamedResult{Name: c.Name(), Result: runCheck(ctx, c)}
		}()
	}
	wg.Wait()
	return results
}

// Overall folds results: any unhealthy result makes the whole unhealthy,
// otherwise any degraded result makes it degraded.
func Overall(results []NamedResult) Status {
	status := StatusHealthy
	for _, r := range results {
		if r.Status > status {
			status = r.Status
		}
	}
	return status
}

func runCheck(ctx context.Context, c Checker) Result {
	start := time.Now()
	resultCh := make(chan Result, 1)

	go func() {
		result := c.Check(ctx)
		result.Duration = time.Since(start)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

package resilience

import (
	"context"
	"fmt"
	"time"
)

// RepeatConfig configures a fixed-count repetition.
type RepeatConfig struct {
	// Times is how often the operation runs. Values <= 0 run it zero times.
	Times int

	// Interval is the pause after each run except the last.
	// Default: 0 (no pause)
	Interval time.Duration

	// OnRun is called before each run with the 1-based run number.
	OnRun func(run int)
}

// Repeat runs an operation a fixed number of times with a fixed pause.
//
// Unlike Retry, Repeat does not react to success: every run is performed
// unless the context is cancelled or the operation fails.
type Repeat struct {
	config RepeatConfig
}

// NewRepeat creates a new repeat handler.
func NewRepeat(config RepeatConfig) *Repeat {
	if config.Times < 0 {
		config.Times = 0
	}
	if config.Interval < 0 {
		config.Interval = 0
	}
	return &Repeat{config: config}
}

// Execute runs op Times times on the calling goroutine and blocks until done.
//
// If ctx is cancelled before a run or during a pause, Execute stops and
// returns an error matching both ErrInterrupted and ctx.Err(). If op fails,
// Execute stops and returns that error unchanged.
func (r *Repeat) Execute(ctx context.Context, op func(context.Context) error) error {
	for run := 1; run <= r.config.Times; run++ {
		if err := ctx.Err(); err != nil {
			return interrupted(run-1, err)
		}

		if r.config.OnRun != nil {
			r.config.OnRun(run)
		}
		if err := op(ctx); err != nil {
			return err
		}

		if run == r.config.Times || r.config.Interval == 0 {
			continue
		}

		timer := time.NewTimer(r.config.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return interrupted(run, ctx.Err())
		case <-timer.C:
		}
	}
	return nil
}

// Config returns the repeat configuration.
func (r *Repeat) Config() RepeatConfig {
	return r.config
}

// InvokeRepeating runs op times times with interval between runs.
func InvokeRepeating(ctx context.Context, times int, interval time.Duration, op func(context.Context) error) error {
	return NewRepeat(RepeatConfig{Times: times, Interval: interval}).Execute(ctx, op)
}

func interrupted(completed int, cause error) error {
	return fmt.Errorf("%w after %d run(s): %w", ErrInterrupted, completed, cause)
}

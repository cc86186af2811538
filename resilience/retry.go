package resilience

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// Attempts is the total number of attempts, including the first.
	// Default: 1 (no retry)
	Attempts int

	// Delay is the pause before the second attempt. It doubles on every
	// further attempt.
	// Default: 50ms
	Delay time.Duration

	// MaxDelay caps the pause between attempts.
	// Default: 2s
	MaxDelay time.Duration

	// Jitter adds up to 25% random delay to every pause.
	Jitter bool

	// RetryIf reports whether err is worth another attempt.
	// Default: any error not caused by context cancellation.
	RetryIf func(err error) bool

	// OnRetry is called before each pause with the failed attempt number.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-runs a failing operation with exponential backoff.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	if config.Attempts <= 0 {
		config.Attempts = 1
	}
	if config.Delay <= 0 {
		config.Delay = 50 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 2 * time.Second
	}
	if config.RetryIf == nil {
		config.RetryIf = retryable
	}
	return &Retry{config: config}
}

// Execute runs op until it succeeds, RetryIf rejects its error, or the
// attempts are used up. When attempts run out, the returned error matches
// both ErrRetriesExhausted and the last error of op. Cancellation during a
// pause returns an error matching ErrInterrupted and ctx.Err().
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	delay := r.config.Delay
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil || !r.config.RetryIf(err) {
			return err
		}
		if attempt == r.config.Attempts {
			if attempt == 1 {
				return err
			}
			return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
		}

		pause := r.jittered(delay)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, pause)
		}

		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w after %d attempt(s): %w", ErrInterrupted, attempt, ctx.Err())
		case <-timer.C:
		}

		delay = min(delay*2, r.config.MaxDelay)
	}
}

func (r *Retry) jittered(d time.Duration) time.Duration {
	if !r.config.Jitter || d < 4 {
		return d
	}
	// #nosec G404 -- jitter is non-cryptographic timing variance.
	return d + time.Duration(rand.Int64N(int64(d/4)))
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}

func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Package resilience provides the execution helpers used by warm-up calls.
//
//   - Repeat runs an operation a fixed number of times with a fixed pause
//     and stops early when the context is cancelled.
//   - Timeout bounds a single operation with a context deadline.
//   - Retry re-runs a failing operation with exponential backoff.
//
// Cancellation between runs or during a pause is reported as ErrInterrupted
// wrapping ctx.Err(), so callers can tell it apart from a failed operation:
//
//	err := resilience.InvokeRepeating(ctx, 5, 500*time.Millisecond, func(ctx context.Context) error {
//	    return call(ctx)
//	})
//	if errors.Is(err, resilience.ErrInterrupted) {
//	    // shutting down
//	}
package resilience

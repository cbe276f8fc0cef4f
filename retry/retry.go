package retry

import (
	"context"
	"time"
)

// Do calls fn until it succeeds, returns an error that is not transient,
// or the attempts in cfg run out. The last error is returned. Waiting
// between attempts stops early when ctx is done.
//
// onRetry, when non-nil, is called before each wait with the failed
// attempt number (1-indexed), its error and the upcoming delay.
func Do[T any](ctx context.Context, cfg Config, onRetry func(attempt int, err error, delay time.Duration), fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.attempts()
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == attempts-1 {
			break
		}

		delay := cfg.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt+1, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

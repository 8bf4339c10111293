package repeat

import (
	"context"
	"time"
)

func Repeat(f func() error, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		time.Sleep(delay)
	}

	return err
}

// WithBackoff calls f up to attempts times, doubling the pause after every
// failure starting at delay. retryable decides whether an error is worth
// another attempt; a nil retryable retries everything. The last error is
// returned when attempts are exhausted or ctx is done.
func WithBackoff(ctx context.Context, f func(attempt int) error, attempts int, delay time.Duration, retryable func(error) bool) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = f(i); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if i == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		delay *= 2
	}

	return err
}

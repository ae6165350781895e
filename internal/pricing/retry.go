package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// retry executes f with exponential backoff. Non transient errors and a
// cancelled context stop immediately.
func retry(ctx context.Context, log *slog.Logger, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = f()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		log.Warn("Stripe API error, retrying", "error", err, "backoff", sleep, "attempt", i+1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

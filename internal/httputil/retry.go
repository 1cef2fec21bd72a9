package httputil

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"
)

// ErrExhausted marks a failure that survived every retry attempt.
var ErrExhausted = errors.New("all retry attempts failed")

type RetryConfig struct {
	MaxAttempts int
	Backoff     float64       // base of the exponential delay
	Unit        time.Duration // one delay unit, default 1s
}

var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	Backoff:     2,
	Unit:        time.Second,
}

// Do executes attempt up to cfg.MaxAttempts times. Before retrying after a
// failed attempt i (counted from 0) it sleeps Backoff^i seconds, so with the
// defaults the delays are 1s and 2s. Any error from attempt is treated as
// transient; after the last failure the error is wrapped in ErrExhausted.
func Do(ctx context.Context, cfg RetryConfig, attempt func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetry.MaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultRetry.Backoff
	}
	if cfg.Unit <= 0 {
		cfg.Unit = DefaultRetry.Unit
	}

	var lastErr error
	for i := 0; i < cfg.MaxAttempts; i++ {
		if i > 0 {
			delay := time.Duration(math.Pow(cfg.Backoff, float64(i-1)) * float64(cfg.Unit))
			log.Printf("[WARN] attempt %d/%d failed: %v, retrying in %s", i, cfg.MaxAttempts, lastErr, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := attempt(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("%w (%d attempts): %w", ErrExhausted, cfg.MaxAttempts, lastErr)
}

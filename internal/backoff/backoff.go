// Package backoff provides a generic retry loop with exponential backoff,
// used around external process invocations.
package backoff

import (
	"context"
	"fmt"
	"time"
)

// Default retry configuration.
const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
	defaultMaxDelay    = 30 * time.Second
)

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case. Injectable so tests can observe delays without sleeping.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds retry parameters.
//
// Invalid values are normalized:
// - MaxAttempts < 1 becomes the default (3)
// - BaseDelay <= 0 becomes 1s
// - MaxDelay <= 0 becomes 30s
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay scales the backoff schedule: the wait before attempt n
	// (n >= 2) is BaseDelay * 2^(n-1), so 2s then 4s with a 1s base.
	BaseDelay time.Duration

	// MaxDelay caps a single wait.
	MaxDelay time.Duration

	// Sleep overrides the context-aware timer wait. Nil uses the default.
	Sleep SleepFunc
}

// normalize ensures all Config fields have valid values.
func (c *Config) normalize() {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.Sleep == nil {
		c.Sleep = sleepTimer
	}
}

// sleepTimer is the production SleepFunc.
func sleepTimer(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		if !timer.Stop() {
			<-timer.C
		}
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retry executes fn up to cfg.MaxAttempts times with exponential backoff
// between attempts. It retries only if shouldRetry returns true for the
// error; a nil shouldRetry retries every error. Returns the result of the
// first successful attempt, or the last error wrapped with the attempt count
// once the budget is exhausted.
func Retry[T any](
	ctx context.Context,
	cfg Config,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg.normalize()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := cfg.BaseDelay << (attempt - 1)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
			if err := cfg.Sleep(ctx, delay); err != nil {
				return zero, err
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if shouldRetry != nil && !shouldRetry(lastErr) {
			return zero, lastErr
		}
	}

	return zero, fmt.Errorf("%d attempts: %w", cfg.MaxAttempts, lastErr)
}

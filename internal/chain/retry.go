package chain

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/creasty/defaults"

	janitorerr "github.com/mrz1836/janitor/pkg/errors"
)

// Sentinel errors for retry logic.
var (
	ErrRetryable = &janitorerr.JanitorError{
		Code:     "RETRYABLE_ERROR",
		Message:  "retryable error",
		ExitCode: janitorerr.ExitGeneral,
	}

	ErrTimeout = &janitorerr.JanitorError{
		Code:     "TIMEOUT",
		Message:  "operation timed out",
		ExitCode: janitorerr.ExitGeneral,
	}
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts int           `default:"3"`     // Maximum number of attempts (including initial)
	BaseDelay   time.Duration `default:"500ms"` // Initial delay between retries
	MaxDelay    time.Duration `default:"4s"`    // Maximum delay between retries
}

// DefaultRetryConfig returns 3 attempts with backoff starting at 500ms.
func DefaultRetryConfig() RetryConfig {
	var cfg RetryConfig
	_ = defaults.Set(&cfg)
	return cfg
}

// RetryAfterError asks the retry loop to wait at least Wait before the next
// attempt, typically from a Retry-After header on a 429 response.
type RetryAfterError struct {
	Wait time.Duration
	Err  error
}

func (e *RetryAfterError) Error() string {
	return fmt.Sprintf("%v (retry after %s)", e.Err, e.Wait)
}

func (e *RetryAfterError) Unwrap() error {
	return e.Err
}

// Retry executes the operation with the default retry configuration.
func Retry[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	return RetryWithConfig(ctx, DefaultRetryConfig(), operation)
}

// RetryWithConfig executes the operation, retrying retryable errors with
// exponential backoff and jitter.
func RetryWithConfig[T any](ctx context.Context, cfg RetryConfig, operation func() (T, error)) (T, error) {
	var result T
	var err error

	attempts := max(cfg.MaxAttempts, 1)
	for attempt := 0; attempt < attempts; attempt++ {
		result, err = operation()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return result, err
		}
		if attempt == attempts-1 {
			break
		}

		delay := calculateDelay(attempt, cfg.BaseDelay, cfg.MaxDelay)
		var ra *RetryAfterError
		if errors.As(err, &ra) && ra.Wait > delay {
			delay = min(ra.Wait, cfg.MaxDelay*4)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}

	return result, fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
}

// calculateDelay returns a duration in [d/2, d) where d = base*2^attempt capped at maxDelay.
func calculateDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := baseDelay * (1 << attempt)
	if delay > maxDelay || delay <= 0 {
		delay = maxDelay
	}
	half := delay / 2
	if half <= 0 {
		return delay
	}
	return half + rand.N(half) //nolint:gosec // G404: Jitter does not require cryptographic randomness
}

// IsRetryable returns true if the error should trigger a retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRetryable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, janitorerr.ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ParseRetryAfter parses a Retry-After header given in seconds.
// Returns 0 if the header is missing or malformed.
func ParseRetryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// WrapRetryable marks an error as retryable.
func WrapRetryable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}

package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps failures to reach a shared mesh cache. A lookup that
// fails with it is treated as a miss, so the mesh is processed again.
var ErrUnavailable = errors.New("mesh cache unavailable")

// Backoff used by backends that talk to a remote store.
const (
	retryAttempts = 3
	retryDelay    = time.Second
)

// RetryableError marks a transient backend failure.
type RetryableError struct{ Err error }

// Retryable marks err as transient. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was marked by [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff runs fn until it succeeds, returns an error not marked
// by [Retryable], or has failed retryAttempts times. The delay doubles after
// each failure.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return retry(ctx, retryAttempts, retryDelay, fn)
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

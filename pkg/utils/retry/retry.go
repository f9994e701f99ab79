package retry

import (
	"context"
	"errors"
	"time"
)

// ErrRetry asks Blocking to try again after its next backoff.
var ErrRetry = errors.New("retry")

// Backoff is a (blocking) function returning when to retry.
//
// # Args
//
// - context: if the context is canceled, Backoff should return ctx.Err().
//
// # Returns
//
// - error: nil to go ahead with the retry, non-nil to stop.
type Backoff func(context.Context) error

// StaticBackoff returns a Backoff waiting for a fixed interval.
func StaticBackoff(interval time.Duration) Backoff {
	return ExponentialBackoff(interval, 1)
}

// ExponentialBackoff returns a Backoff with growing intervals.
//
// For the N-th call it waits `initialInterval * r^N`,
// or until the context is done.
func ExponentialBackoff(initialInterval time.Duration, r float64) Backoff {
	interval := initialInterval
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer func() {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			interval = time.Duration(float64(interval) * r)
			return nil
		}
	}
}

// Blocking calls f until it returns nil or a non-retry error.
//
// Before each attempt it waits one backoff period. When f returns
// ErrRetry (or wraps it), f is called again after the next backoff;
// any other error, and the value f returned with it, are passed
// through as-is.
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	last := *new(T)
	for {
		if err := b(ctx); err != nil {
			return last, err
		}

		var err error
		last, err = f()
		if err == nil {
			return last, nil
		}
		if errors.Is(err, ErrRetry) {
			continue
		}
		return last, err
	}
}

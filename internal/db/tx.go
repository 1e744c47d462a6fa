package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

type RetryOptions struct {
	MaxAttempts int
	Backoff     time.Duration
	// Retryable decides whether a failed attempt runs again. Defaults to IsRetryable.
	Retryable func(error) bool
}

func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts: 3,
		Backoff:     50 * time.Millisecond,
		Retryable:   IsRetryable,
	}
}

// WithRetry runs fn in a transaction and repeats the whole transaction while
// the failure is retryable, doubling the backoff with jitter between attempts.
func WithRetry(ctx context.Context, db *gorm.DB, opts RetryOptions, fn func(tx *gorm.DB) error) error {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 50 * time.Millisecond
	}
	if opts.Retryable == nil {
		opts.Retryable = IsRetryable
	}

	backoff := opts.Backoff
	var lastErr error
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if !opts.Retryable(err) {
			return err
		}
		lastErr = err
		if attempt == opts.MaxAttempts {
			break
		}

		jitter := time.Duration(rand.Int63n(int64(backoff/4) + 1))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}

	return fmt.Errorf("max attempts (%d) exceeded: %w", opts.MaxAttempts, lastErr)
}

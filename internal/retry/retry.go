// Package retry wraps calls to rate-limited remote services with exponential
// backoff. Only rate limiting is retried; any other failure is the caller's
// problem and propagates immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrExhausted is returned when every attempt hit a rate limit.
var ErrExhausted = errors.New("retry attempts exhausted")

// ErrRateLimited marks an error as a rate-limit signal. Clients wrap it when
// the remote side answers 429.
var ErrRateLimited = errors.New("rate limited")

// Config controls the backoff schedule.
type Config struct {
	// MaxRetries is the number of attempts after the first.
	MaxRetries int

	// InitialDelay is the wait before the second attempt. Each subsequent
	// wait doubles.
	InitialDelay time.Duration

	// IsRetryable decides whether an error is a rate-limit signal worth
	// waiting out. Defaults to IsRateLimit.
	IsRetryable func(error) bool
}

// DefaultConfig mirrors the schedule remote model services tolerate well:
// three extra attempts starting at one second.
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		InitialDelay: time.Second,
	}
}

// Do invokes fn until it succeeds, fails with a non-retryable error, the
// context is done, or the attempts run out. On exhaustion the last error is
// wrapped together with ErrExhausted so callers can match either.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = time.Second
	}
	retryable := cfg.IsRetryable
	if retryable == nil {
		retryable = IsRateLimit
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, cfg.MaxRetries+1, lastErr)
}

// IsRateLimit recognizes the rate-limit signals remote model services emit:
// HTTP 429 texts, gRPC resource exhaustion, and quota messages.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}

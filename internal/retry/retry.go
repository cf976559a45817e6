// Package retry provides bounded retry with exponential backoff.
// The detector uses it for presentation-layer delivery, which is the only
// place a detected offer may be definitively lost (and must be observable).
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrMaxAttemptsExceeded is returned when all attempts failed.
	ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")
	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled during retry")
)

// Config configures retry behavior.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
	// Multiplier is the backoff multiplier (default 2.0).
	Multiplier float64
	// IsRetryable decides whether an error is worth another attempt.
	// Nil retries every error.
	IsRetryable func(error) bool
}

// DefaultConfig returns the delivery defaults: 3 attempts, 100ms initial
// delay, doubling, capped at 5s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// Do executes fn with retry and exponential backoff.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if cfg.IsRetryable != nil && !cfg.IsRetryable(err) {
			return err
		}

		if attempt < cfg.MaxAttempts {
			delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1)))
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, cfg.MaxAttempts, lastErr)
}

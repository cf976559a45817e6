package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n2ilva/motorista-inteligente/internal/retry"
)

func fastConfig(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(context.Background(), fastConfig(3), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RecoversAfterFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := retry.Do(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	err := retry.Do(context.Background(), fastConfig(3), func() error {
		calls++
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrMaxAttemptsExceeded)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	t.Parallel()

	fatal := errors.New("fatal")
	cfg := fastConfig(5)
	cfg.IsRetryable = func(err error) bool { return !errors.Is(err, fatal) }

	calls := 0
	err := retry.Do(context.Background(), cfg, func() error {
		calls++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, fastConfig(3), func() error { return nil })
	assert.ErrorIs(t, err, retry.ErrContextCancelled)
}

package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{})
	require.NoError(t, err)
	require.NotNil(t, l)

	// Must not panic at any level.
	l.Debug("debug message")
	l.Info("info message", logger.String("key", "value"))
	l.Warn("warn message", logger.Int("count", 3))
	l.Error("error message", logger.Error(assert.AnError))
	_ = l.Sync() // syncing stdout can fail on Linux, not asserted
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{Level: "bogus"})
	require.NoError(t, err)
	l.Info("still works")
}

func TestWith_ReturnsNewLogger(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{})
	require.NoError(t, err)

	child := l.With(logger.String("component", "detect"))
	require.NotNil(t, child)
	child.Info("child logger works")
}

func TestContext_RoundTrip(t *testing.T) {
	t.Parallel()

	nop := logger.NewNop()
	ctx := logger.WithContext(context.Background(), nop)
	assert.Equal(t, nop, logger.FromContext(ctx))
}

func TestContext_FallbackIsUsable(t *testing.T) {
	t.Parallel()

	fallback := logger.FromContext(context.Background())
	require.NotNil(t, fallback)
	fallback.Warn("fallback warn")
}

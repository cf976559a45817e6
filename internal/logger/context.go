package logger

import (
	"context"
	"sync"
)

type ctxKey struct{}

// WithContext returns a new context with the given logger stored in it.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from the context. Returns a shared
// warn-level stderr logger when none is stored so errors are never
// silently discarded. Background goroutines should receive a logger
// explicitly rather than relying on context.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return fallbackLogger()
}

var (
	fallbackLog  Logger
	fallbackOnce sync.Once
)

func fallbackLogger() Logger {
	fallbackOnce.Do(func() {
		l, err := New(Config{
			Level:       "warn",
			OutputPaths: []string{"stderr"},
		})
		if err != nil {
			l = NewNop()
		}
		fallbackLog = l
	})
	return fallbackLog
}

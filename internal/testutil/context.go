package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextWithTimeout returns a context cancelled when the test ends or after d.
func ContextWithTimeout(tb testing.TB, d time.Duration) context.Context {
	tb.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), d)
	tb.Cleanup(cancel)

	return ctx
}

// ContextWithCancel returns a context cancelled when the test ends.
func ContextWithCancel(tb testing.TB) (context.Context, context.CancelFunc) {
	tb.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)

	return ctx, cancel
}

// WaitDone fails the test if done is not closed (or sent on) within d.
func WaitDone[T any](tb testing.TB, done <-chan T, d time.Duration) T {
	tb.Helper()

	select {
	case v := <-done:
		return v
	case <-time.After(d):
		tb.Fatalf("not done after %s", d)
	}
	var zero T
	return zero
}

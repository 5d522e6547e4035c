// Package testutil provides shared helpers for tests across packages.
package testutil

import (
	"log/slog"
	"testing"
)

// testWriter adapts t.Log so component log output lands in the test's own
// output and is only shown on failure or with -v.
type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// Logger returns a debug-level slog.Logger that writes through t.Log.
func Logger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

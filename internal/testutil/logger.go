// Package testutil bridges the pipeline's slog output into the test
// log. Extraction components log skipped files, parse warnings, and
// run summaries; routing that through t.Log keeps it attached to the
// failing test instead of interleaved on stderr.
package testutil

import (
	"log/slog"
	"testing"
)

// NewTestLogger returns a debug-level logger writing to t.Log().
// Output only surfaces on failure or under -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// Package testutil provides structured logging helpers for tests.
package testutil

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes to t.Log, so
// conversion logs only appear on failure or with -v.
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
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// LogBuffer collects log lines for assertions. Safe for concurrent runs.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Lines returns the lines logged so far containing every substring in match.
func (b *LogBuffer) Lines(match ...string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(b.buf.String()), "\n") {
		ok := line != ""
		for _, m := range match {
			ok = ok && strings.Contains(line, m)
		}
		if ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// NewCapturingLogger returns a debug-level text logger writing into the
// returned buffer.
func NewCapturingLogger() (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

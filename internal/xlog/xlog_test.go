package xlog

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWritesPhaseTag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp log file: %v", err)
	}
	l := New(f, slog.LevelDebug).Phase("backend")
	l.Info("emitting artifact", "target", "llvmir")
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read temp log file: %v", err)
	}
	out := string(data)
	for _, want := range []string{"phase=backend", "target=llvmir", "emitting artifact"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output, got:\n%s", want, out)
		}
	}
}

func TestTimingLogsAtDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	l := &Logger{slog: slog.New(h)}
	l.Timing("parse", 1.5)
	if buf.Len() != 0 {
		t.Errorf("expected no output at Info level for a Debug-level timing record, got: %s", buf.String())
	}
}

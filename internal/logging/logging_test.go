package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.Error("kept too")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("low-severity messages leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "[ERROR]") {
		t.Errorf("high-severity messages missing: %q", out)
	}
}

func TestLoggerWithField(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug).WithField("buffer", "buf1")

	l.Debug("classified")

	if !strings.Contains(buf.String(), "buffer=buf1") {
		t.Errorf("field missing from line: %q", buf.String())
	}
}

func TestLoggerFormatArgs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.Info("width %d", 74)

	if !strings.Contains(buf.String(), "width 74") {
		t.Errorf("args not formatted: %q", buf.String())
	}
}

func TestDiscardWritesNothing(t *testing.T) {
	// Must not panic despite the nil writer.
	Discard.Error("nothing")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

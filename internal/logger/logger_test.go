package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if log := New(tt.level); log == nil {
				t.Error("New() returned nil")
			}
		})
	}
}

func TestLoggerWritesLevelPrefix(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Debug(ctx, "hidden")
	log.Info(ctx, "episode %s summarized in %d ms", "ep1", 12)
	log.Warn(ctx, "transcript missing")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "[INFO] episode ep1 summarized in 12 ms") {
		t.Errorf("missing formatted info line: %q", out)
	}
	if !strings.Contains(out, "[WARN] transcript missing") {
		t.Errorf("missing warn line: %q", out)
	}
}

func TestShouldLog(t *testing.T) {
	tests := []struct {
		name        string
		configLevel string
		logLevel    string
		shouldLog   bool
	}{
		{"debug logs at debug level", "debug", "debug", true},
		{"info logs at debug level", "debug", "info", true},
		{"debug doesn't log at info level", "info", "debug", false},
		{"info logs at info level", "info", "info", true},
		{"error always logs", "debug", "error", true},
		{"warn suppressed at error level", "error", "warn", false},
		{"invalid level defaults to info", "bogus", "debug", false},
		{"upper case level accepted", "DEBUG", "debug", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewWithWriter(tt.configLevel, &bytes.Buffer{}).(*implLogger)
			if got := log.shouldLog(tt.logLevel); got != tt.shouldLog {
				t.Errorf("shouldLog() = %v, want %v", got, tt.shouldLog)
			}
		})
	}
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Error(context.Background(), "nothing to see")
}

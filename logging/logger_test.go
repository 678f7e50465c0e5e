package logging

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/mkellner/contactsync/errors"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewLogger(Config{Level: tt.level, Format: "text"})
			if logger == nil {
				t.Fatal("NewLogger returned nil")
			}
			if !logger.Enabled(nil, tt.want) {
				t.Errorf("logger with level %q should enable %v", tt.level, tt.want)
			}
		})
	}
}

func TestDefaultInitializesOnce(t *testing.T) {
	defaultLogger = nil
	first := Default()
	second := Default()
	if first != second {
		t.Error("Default() should return the same logger instance")
	}
}

func TestCalloutErrorValuer(t *testing.T) {
	e := errors.NewRejectionError(errors.OpFetch, 404, fmt.Errorf("not found"))
	v := CalloutErrorValuer{CalloutError: e}.LogValue()

	if v.Kind() != slog.KindGroup {
		t.Fatalf("LogValue kind = %v, want group", v.Kind())
	}

	found := map[string]bool{}
	for _, attr := range v.Group() {
		found[attr.Key] = true
	}
	for _, key := range []string{"operation", "component", "code", "recoverable", "error", "metadata"} {
		if !found[key] {
			t.Errorf("LogValue missing %q attribute", key)
		}
	}
}

func TestGetConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("ENVIRONMENT", "test")

	config := GetConfigFromEnv()
	if config.Level != "warn" {
		t.Errorf("Level = %q, want warn", config.Level)
	}
	if config.Format != "text" {
		t.Errorf("Format = %q, want text", config.Format)
	}
	if config.AddSource {
		t.Error("AddSource should be disabled for test environment")
	}
}

package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// TestLogger_IncludesCacheName verifies the cache name is present in log output.
func TestLogger_IncludesCacheName(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	cacheLogger := logger.WithCache("thumbnails")
	cacheLogger.Info(context.Background(), "test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, buf.String())
	}

	if v, ok := logEntry["cache.name"].(string); !ok || v != "thumbnails" {
		t.Errorf("expected cache.name='thumbnails', got %v", logEntry["cache.name"])
	}
	if v, ok := logEntry["msg"].(string); !ok || v != "test message" {
		t.Errorf("expected msg='test message', got %v", logEntry["msg"])
	}
	if v, ok := logEntry["level"].(string); !ok || v != "info" {
		t.Errorf("expected level='info', got %v", logEntry["level"])
	}
}

// TestLogger_IncludesFields verifies explicit fields appear in output.
func TestLogger_IncludesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "stored",
		Field{Key: "key", Value: "cache:thumbnails:abc"},
		Field{Key: "size_bytes", Value: 1024},
	)

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if v, ok := logEntry["key"].(string); !ok || v != "cache:thumbnails:abc" {
		t.Errorf("expected key field, got %v", logEntry["key"])
	}
	if v, ok := logEntry["size_bytes"].(float64); !ok || v != 1024 {
		t.Errorf("expected size_bytes=1024, got %v", logEntry["size_bytes"])
	}
}

// TestLogger_LevelFiltering verifies entries below the configured level are dropped.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	logger.Debug(context.Background(), "debug message")
	logger.Info(context.Background(), "info message")

	if buf.Len() != 0 {
		t.Errorf("expected no output below warn level, got: %s", buf.String())
	}

	logger.Warn(context.Background(), "warn message")
	logger.Error(context.Background(), "error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
}

// TestLogger_WithCacheDoesNotMutateParent verifies the parent logger is unchanged.
func TestLogger_WithCacheDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	_ = logger.WithCache("avatars")
	logger.Info(context.Background(), "parent message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if _, ok := logEntry["cache.name"]; ok {
		t.Errorf("parent logger should not carry cache.name, got %v", logEntry["cache.name"])
	}
}

// TestParseLogLevel verifies level parsing with an unknown fallback.
func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

// TestLogLevel_String verifies round-tripping of level names.
func TestLogLevel_String(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error"}
	for _, name := range levels {
		if got := ParseLogLevel(name).String(); got != name {
			t.Errorf("expected %q, got %q", name, got)
		}
	}
}

// TestNoopLogger verifies the noop logger discards everything and chains.
func TestNoopLogger(t *testing.T) {
	logger := NoopLogger()

	// Must not panic and WithCache must return a usable logger.
	child := logger.WithCache("anything")
	child.Info(context.Background(), "dropped")
	child.Error(context.Background(), "dropped too")
}

package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestLogrusLogger() (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.DebugLevel)
	return NewLogrusLogger(base), &buf
}

// TestLogrusLogger_EmitsMessage verifies messages flow to the wrapped logger.
func TestLogrusLogger_EmitsMessage(t *testing.T) {
	logger, buf := newTestLogrusLogger()

	logger.Info(context.Background(), "stored entry", Field{Key: "size_bytes", Value: 512})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse logrus output: %v\nOutput: %s", err, buf.String())
	}
	if entry["msg"] != "stored entry" {
		t.Errorf("expected msg='stored entry', got %v", entry["msg"])
	}
	if v, ok := entry["size_bytes"].(float64); !ok || v != 512 {
		t.Errorf("expected size_bytes=512, got %v", entry["size_bytes"])
	}
}

// TestLogrusLogger_WithCache verifies the cache name rides on every entry.
func TestLogrusLogger_WithCache(t *testing.T) {
	logger, buf := newTestLogrusLogger()

	logger.WithCache("thumbnails").Warn(context.Background(), "memory pressure")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse logrus output: %v", err)
	}
	if entry["cache.name"] != "thumbnails" {
		t.Errorf("expected cache.name='thumbnails', got %v", entry["cache.name"])
	}
	if entry["level"] != "warning" {
		t.Errorf("expected level='warning', got %v", entry["level"])
	}
}

// TestLogrusLogger_NilBase verifies a standalone logger is created from nil.
func TestLogrusLogger_NilBase(t *testing.T) {
	logger := NewLogrusLogger(nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	// Must not panic.
	logger.Debug(context.Background(), "startup")
}

// TestLogrusLogger_LevelNames verifies all severities route correctly.
func TestLogrusLogger_LevelNames(t *testing.T) {
	logger, buf := newTestLogrusLogger()

	logger.Debug(context.Background(), "d")
	logger.Info(context.Background(), "i")
	logger.Warn(context.Background(), "w")
	logger.Error(context.Background(), "e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d", len(lines))
	}

	want := []string{"debug", "info", "warning", "error"}
	for i, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse line %d: %v", i, err)
		}
		if entry["level"] != want[i] {
			t.Errorf("line %d: expected level=%q, got %v", i, want[i], entry["level"])
		}
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sociograph/sociograph/internal/config"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewWithWriter(&buf, config.LoggingConfig{Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("NewWithWriter() returned error: %v", err)
	}

	logger.Info("cache hit", "query", "@someone")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if record["msg"] != "cache hit" {
		t.Errorf("expected msg %q, got %v", "cache hit", record["msg"])
	}
	if record["query"] != "@someone" {
		t.Errorf("expected query attribute %q, got %v", "@someone", record["query"])
	}
}

func TestNewTextLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewWithWriter(&buf, config.LoggingConfig{Level: "warn", Format: "text"})
	if err != nil {
		t.Fatalf("NewWithWriter() returned error: %v", err)
	}

	logger.Info("suppressed")
	logger.Warn("surfaced")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("info record should have been filtered at warn level")
	}
	if !strings.Contains(out, "surfaced") {
		t.Error("warn record missing from output")
	}
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "info", Format: "yaml"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := New(config.LoggingConfig{Level: "loud", Format: "json"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

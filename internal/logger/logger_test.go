package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cfg := Config{
		Level:  "info",
		Format: "text",
	}
	logger := New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}

	cfg.Format = "json"
	logger = New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}

	// Invalid level falls back to info
	cfg.Level = "invalid"
	logger = New(cfg)
	if logger == nil {
		t.Error("Expected logger to not be nil")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "warn", Format: "text", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected info message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("Expected warn message to be written, got %q", out)
	}
}

func TestContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Format: "json", Output: &buf})

	logger.WithComponent("crawler").
		WithLabel("owner-1", "42").
		WithRelease("9001", "Night Drive").
		WithTrack("9001-0", "Intro").
		Info("matched")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}

	want := map[string]string{
		"component":     "crawler",
		"owner_id":      "owner-1",
		"label_id":      "42",
		"release_id":    "9001",
		"release_title": "Night Drive",
		"track_id":      "9001-0",
		"track_title":   "Intro",
	}
	for key, value := range want {
		if entry[key] != value {
			t.Errorf("Expected %s=%q, got %v", key, value, entry[key])
		}
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger == nil {
		t.Fatal("Expected logger to not be nil")
	}
	logger.Error("nowhere")
}

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.Writer = &buf
	config.AddSource = false

	log := NewLogger(config)
	log.Info("hello", "component", "test")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("expected msg 'hello', got %v", entry["msg"])
	}
	if entry["component"] != "test" {
		t.Errorf("expected component 'test', got %v", entry["component"])
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	config.Writer = &buf
	config.Level = slog.LevelError

	log := NewLogger(config)
	log.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("expected info to be suppressed at error level, got %q", buf.String())
	}

	log.Error("emitted")
	if buf.Len() == 0 {
		t.Error("expected error output")
	}
}

func TestLevelName(t *testing.T) {
	if LevelName(LevelTrace) != "TRACE" {
		t.Errorf("expected TRACE, got %s", LevelName(LevelTrace))
	}
	if LevelName(LevelFatal) != "FATAL" {
		t.Errorf("expected FATAL, got %s", LevelName(LevelFatal))
	}
	if LevelName(slog.LevelWarn) != "WARN" {
		t.Errorf("expected WARN, got %s", LevelName(slog.LevelWarn))
	}
}

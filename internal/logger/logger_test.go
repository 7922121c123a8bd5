package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"vhostmgr/internal/config"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "debug", Format: "json"}, &buf)

	log.WithField("component", "test").Debug("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}

	if entry["msg"] != "hello" {
		t.Errorf("Expected msg 'hello', got %v", entry["msg"])
	}

	if entry["component"] != "test" {
		t.Errorf("Expected component field, got %v", entry["component"])
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "loud"}, &buf)

	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected info level, got %s", log.GetLevel())
	}

	log.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("Debug message should not be written at info level")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "info", Format: "json"}, &buf)

	fallback := log.WithField("component", "reload")
	if FromContext(context.Background(), fallback) != fallback {
		t.Error("Expected fallback without a stored entry")
	}

	opID := NewOpID()
	ctx := WithEntry(context.Background(), log.WithField("op_id", opID))
	FromContext(ctx, fallback).Info("patched")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line: %v", err)
	}
	if entry["op_id"] != opID {
		t.Errorf("Expected op_id %s, got %v", opID, entry["op_id"])
	}
	if entry["component"] != "reload" {
		t.Errorf("Expected component from fallback, got %v", entry["component"])
	}
}

func TestNew_FileOutput(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "vhostmgr.log")
	log := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &buf)

	log.Info("to both")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file, got %v", err)
	}
	if !strings.Contains(string(data), "to both") || !strings.Contains(buf.String(), "to both") {
		t.Errorf("Expected line in file and writer, got file=%q writer=%q", data, buf.String())
	}
}

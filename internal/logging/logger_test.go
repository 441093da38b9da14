package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_CreatesDirAndLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	log, err := NewLogger(dir, "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	// Directory should exist
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir missing: %v", err)
	}

	log.Info("test_message_from_logging_test")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "sitewatch.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "test_message_from_logging_test") || !strings.Contains(string(data), `"ts"`) {
		t.Fatalf("unexpected log contents: %s", data)
	}
}

func TestNewLogger_LevelFilters(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "warn")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info("should_be_dropped")
	log.Warn("should_be_kept")
	_ = log.Sync()

	data, _ := os.ReadFile(filepath.Join(dir, "sitewatch.log"))
	if strings.Contains(string(data), "should_be_dropped") || !strings.Contains(string(data), "should_be_kept") {
		t.Fatalf("level not applied: %s", data)
	}
}

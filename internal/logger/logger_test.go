// ABOUTME: Tests for logger configuration
// ABOUTME: Verifies level parsing and that output lands in debug.log

package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitWritesToDebugLog(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	dir := t.TempDir()
	closer, err := Init(dir, "debug", "json")
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	slog.Debug("session restored", "user_id", 1)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("expected debug.log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"session restored"`) {
		t.Errorf("expected JSON log line, got %s", data)
	}
}

func TestInitWithoutConfigDirDiscards(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	closer, err := Init("", "info", "text")
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	slog.Info("dropped")
	if err := closer.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

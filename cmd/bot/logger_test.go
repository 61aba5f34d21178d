package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"soundboard-bot/internal/config"
)

func TestNewLogHandler_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newLogHandler(&buf, slog.LevelWarn))

	logger.Info("hidden")
	logger.Warn("shown", "sound", "airhorn")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "sound=airhorn") {
		t.Errorf("Expected warn message with attributes, got %q", out)
	}
}

func TestInitLogger_NoFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	if closer := InitLogger(&config.Config{LogLevel: "debug"}); closer != nil {
		t.Error("Expected no closer without a log file")
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug level to be enabled")
	}
}

func TestInitLogger_WithFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	path := filepath.Join(t.TempDir(), "bot.log")
	closer := InitLogger(&config.Config{LogLevel: "info", LogFile: path})
	if closer == nil {
		t.Fatal("Expected a closer for the log file")
	}
	defer closer.Close()

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Debug level should be disabled at info level")
	}
}

func TestInitLogger_NilConfig(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	if closer := InitLogger(nil); closer != nil {
		t.Error("Expected no closer for nil config")
	}
}

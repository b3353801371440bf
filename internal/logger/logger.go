// ABOUTME: Structured logging configuration using log/slog
// ABOUTME: Writes to a rotating debug.log so output never interferes with the terminal UI

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/lumberjack"
)

// Init configures the default slog logger to write to configDir/debug.log.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
// If configDir is empty, logging is discarded. The returned closer flushes
// and closes the log file.
func Init(configDir, level, format string) (io.Closer, error) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var (
		w      io.Writer = io.Discard
		closer io.Closer = nopCloser{}
	)
	if configDir != "" {
		if err := os.MkdirAll(configDir, 0700); err != nil {
			slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, opts)))
			return closer, err
		}
		sink := &lumberjack.Logger{
			Filename:   filepath.Join(configDir, "debug.log"),
			MaxSize:    5, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w, closer = sink, sink
	}

	slog.SetDefault(slog.New(newHandler(w, format, opts)))
	return closer, nil
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

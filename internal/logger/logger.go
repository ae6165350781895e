// Package logger builds the application's slog logger from LoggerSettings.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/justsurfingit/hirepath/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing to stdout or to a rotating file.
func New(settings config.LoggerSettings) (*slog.Logger, error) {
	var out io.Writer
	switch settings.Type {
	case config.LogTypeConsole, "":
		out = os.Stdout
	case config.LogTypeFile:
		if settings.FilePath == "" {
			return nil, fmt.Errorf("file path required for file logger")
		}
		out = &lumberjack.Logger{
			Filename:   settings.FilePath,
			MaxSize:    settings.MaxSize,
			MaxBackups: settings.MaxBackups,
			MaxAge:     settings.MaxAge,
			Compress:   true,
		}
	default:
		return nil, fmt.Errorf("unsupported log type: %s", settings.Type)
	}
	return NewWithWriter(out, settings.Level, settings.Format), nil
}

// NewWithWriter builds a logger on an arbitrary writer.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard is a logger for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

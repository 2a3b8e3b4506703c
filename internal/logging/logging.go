// Package logging configures the process-wide slog logger. Output format
// follows LOG_FORMAT (text/json), falling back to TTY detection, and level
// follows LOG_LEVEL. Source locations are logged relative to the working
// directory.
package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// New creates a configured logger.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       levelFromEnv(),
		AddSource:   true,
		ReplaceAttr: shortenSource(),
	}

	var handler slog.Handler
	if useTextFormat() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

// SetDefault creates a logger and installs it as the slog default.
func SetDefault() *slog.Logger {
	logger := New()
	slog.SetDefault(logger)
	return logger
}

// Component returns a child logger tagged with a component name, so chain,
// strategy and service logs can be told apart in aggregate output.
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("component", name)
}

func useTextFormat() bool {
	switch os.Getenv("LOG_FORMAT") {
	case "text":
		return true
	case "json":
		return false
	}
	return isTerminal(os.Stdout)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
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

// shortenSource rewrites source paths relative to the working directory,
// keeping log lines readable.
func shortenSource() func(groups []string, a slog.Attr) slog.Attr {
	wd, _ := os.Getwd()
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key != slog.SourceKey {
			return a
		}
		if src, ok := a.Value.Any().(*slog.Source); ok {
			if rel, err := filepath.Rel(wd, src.File); err == nil {
				src.File = rel
			} else {
				src.File = filepath.Base(src.File)
			}
		}
		return a
	}
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

// Package logging builds the application's slog logger from configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"salesdash/internal/config"
)

// New creates the logger described by cfg and returns a closer for any log
// file it opened. The closer is never nil.
func New(cfg config.LoggingConfig) (*slog.Logger, func() error, error) {
	closer := func() error { return nil }

	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, closer, fmt.Errorf("failed to open log file: %w", err)
		}
		closer = file.Close
		output = file
		if strings.EqualFold(cfg.Output, "both") {
			output = io.MultiWriter(os.Stdout, file)
		}
	default:
		output = os.Stdout
	}

	return slog.New(newHandler(output, cfg)), closer, nil
}

func newHandler(w io.Writer, cfg config.LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	switch strings.ToLower(cfg.Format) {
	case "text":
		return slog.NewTextHandler(w, opts)
	case "json":
		return slog.NewJSONHandler(w, opts)
	}
	// auto: readable text on a terminal, JSON everywhere else
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
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

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

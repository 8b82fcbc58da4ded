// Package logger builds the structured logger used across coverframe.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term" //nolint:depguard // Required for TTY detection
)

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", level) //nolint:err113 // Validation error with actual value
	}
}

// New creates a logger from cfg. The returned closer releases a log file and
// is a no-op for stdout and stderr.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out      io.Writer
		closer   io.Closer = nopCloser{}
		useColor bool
	)

	switch strings.ToLower(cfg.Output) {
	case "stderr", "":
		out = os.Stderr
		useColor = term.IsTerminal(int(os.Stderr.Fd()))
	case "stdout":
		out = os.Stdout
		useColor = term.IsTerminal(int(os.Stdout.Fd()))
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec,mnd // Log file is meant to be readable
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		out = f
		closer = f
	}

	handler, err := newHandler(out, cfg.Format, level, useColor)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}

	return slog.New(handler), closer, nil
}

// NewWithWriter creates a logger writing to w without color.
// This is primarily useful for testing.
func NewWithWriter(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	handler, err := newHandler(w, format, level, false)
	if err != nil {
		return nil, err
	}

	return slog.New(handler), nil
}

func newHandler(w io.Writer, format string, level slog.Level, useColor bool) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case "text", "":
		return NewColorTextHandler(w, opts, useColor), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s (valid: text, json)", format) //nolint:err113 // Validation error with actual value
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

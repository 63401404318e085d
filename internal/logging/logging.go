// Package logging constructs the slog loggers used across apexscan.
//
// Detectors and services log through *slog.Logger; the CLI configures the
// process-wide default once at startup via Setup, and tests that want
// silence use NewDiscardLogger.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Output formats accepted by New and Setup.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New creates a slog.Logger writing to w at the given level.
// Format selects the handler: FormatJSON produces one JSON object per
// record, anything else falls back to the text handler.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup builds a logger with New and installs it as the process default,
// so code that logs through slog.Default picks it up. It returns the
// logger for callers that pass it explicitly.
func Setup(w io.Writer, level slog.Level, format string) *slog.Logger {
	logger := New(w, level, format)
	slog.SetDefault(logger)
	return logger
}

// NewDiscardLogger creates a logger that discards all output.
// Useful for tests or when logging should be completely suppressed.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(100)}))
}

// LevelFromString converts a string to a slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
// Returns slog.LevelInfo for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromVerbosity converts CLI verbosity flags to a slog.Level.
// - quiet=true: returns a level that suppresses all logs
// - verbose=false: warn (default for CLI runs)
// - verbose=true: debug
func LevelFromVerbosity(verbose, quiet bool) slog.Level {
	if quiet {
		return slog.Level(100)
	}
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

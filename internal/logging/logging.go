// Package logging configures the process-wide slog logger.
// Logs always go to stderr so stdout stays clean for reports.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	errUnknownLevel  = errors.New("unknown log level")
	errUnknownFormat = errors.New("unknown log format")
)

// New builds a logger writing to w. format is "text" or "json"; level is one of
// debug, info, warn, error. Empty values select text and warn.
func New(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning", "":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("%w %q (valid: debug, info, warn, error)", errUnknownLevel, level)
	}

	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w %q (valid: text, json)", errUnknownFormat, format)
	}
}

// Init installs a stderr logger as the slog default and returns it.
func Init(format, level string) (*slog.Logger, error) {
	logger, err := New(os.Stderr, format, level)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)

	return logger, nil
}

// Package logging configures the process logger and carries it through
// context.Context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// DebugEnv forces debug level when set to "1".
	DebugEnv = "STACKWRAP_DEBUG"
	// LevelEnv sets the level before --logs-level is parsed.
	LevelEnv = "STACKWRAP_LOGS_LEVEL"
)

// Options controls logger construction.
type Options struct {
	Level string
	// File is a path to append logs to. Empty or "/dev/stderr" logs to the
	// fallback writer.
	File string
}

// New builds a logger writing to w.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "stackwrap",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	}), nil
}

// ParseLevel accepts debug, info, warn, error and fatal; "" means warn.
// DebugEnv overrides the result.
func ParseLevel(level string) (log.Level, error) {
	if os.Getenv(DebugEnv) == "1" {
		return log.DebugLevel, nil
	}
	if level == "" {
		return log.WarnLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q (valid: debug, info, warn, error, fatal)", level)
	}
	return lvl, nil
}

// Setup builds the logger from opts and installs it as the default for both
// charmbracelet/log and log/slog. The returned close func releases the log
// file, if any.
func Setup(opts Options, fallback io.Writer) (*log.Logger, func() error, error) {
	w := fallback
	closeFn := func() error { return nil }
	if opts.File != "" && opts.File != "/dev/stderr" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = f.Close
	}

	logger, err := New(w, opts.Level)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	log.SetDefault(logger)
	slog.SetDefault(slog.New(logger))
	return logger, closeFn, nil
}

// Bootstrap installs a default logger writing to w, configured from the
// environment only. It covers startup work that runs before flags are
// parsed. An invalid level falls back to warn; flag parsing reports it later.
func Bootstrap(w io.Writer) *log.Logger {
	logger, err := New(w, os.Getenv(LevelEnv))
	if err != nil {
		logger, _ = New(w, "")
	}
	log.SetDefault(logger)
	slog.SetDefault(slog.New(logger))
	return logger
}

type ctxKey struct{}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the context's logger, or the default logger.
func FromContext(ctx context.Context) *log.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return logger
	}
	return log.Default()
}

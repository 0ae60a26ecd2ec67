// Package observability builds the process logger and the optional tracing
// pipeline.
package observability

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig holds the logger configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	File   string // optional file sink
	// Stderr enables the stderr sink. The dashboard turns it off while it
	// owns the terminal.
	Stderr bool
	// Extra sinks receive every line that passes the level filter, for
	// example the in-process log buffer.
	Extra []io.Writer
}

// NewLogger creates a logger from cfg. The cleanup function closes the file
// sink, if any.
func NewLogger(cfg LogConfig) (zerolog.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format != "" && format != "json" && format != "console" {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log format: %q (allowed: json, console)", cfg.Format)
	}

	writers := make([]io.Writer, 0, 2+len(cfg.Extra))
	var closers []io.Closer

	if cfg.Stderr {
		if format == "console" {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		} else {
			writers = append(writers, os.Stderr)
		}
	}

	if strings.TrimSpace(cfg.File) != "" {
		f, openErr := openLogFile(cfg.File)
		if openErr != nil {
			return zerolog.Nop(), nil, openErr
		}
		writers = append(writers, f)
		closers = append(closers, f)
	}

	writers = append(writers, cfg.Extra...)

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()

	cleanup := func() error {
		var firstErr error
		for _, c := range closers {
			if closeErr := c.Close(); closeErr != nil && firstErr == nil {
				firstErr = closeErr
			}
		}
		return firstErr
	}
	return logger, cleanup, nil
}

// ParseLevel maps a configured level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level: %q (allowed: error, warn, info, debug)", level)
	}
}

func openLogFile(path string) (*os.File, error) {
	clean := filepath.Clean(strings.TrimSpace(path))
	if err := os.MkdirAll(filepath.Dir(clean), 0o700); err != nil {
		return nil, fmt.Errorf("create log file directory: %w", err)
	}
	f, err := os.OpenFile(clean, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

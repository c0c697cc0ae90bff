// Package logging builds the zerolog loggers used across projboard.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ParseLevel accepts zerolog level names; "" means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level: %q", s)
	}
	return lvl, nil
}

// New returns a human-readable logger writing to w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: w != os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// Open builds the logger for a command. With a path, logs are appended to that
// file as JSON lines; otherwise they go to stderr, or nowhere when quiet (the
// TUI owns the terminal). The returned closer is never nil.
func Open(path, level string, quiet bool) (zerolog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	path = strings.TrimSpace(path)
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
		}
		return zerolog.New(f).Level(lvl).With().Timestamp().Logger(), f, nil
	}
	if quiet {
		return zerolog.Nop(), nopCloser{}, nil
	}
	return New(os.Stderr, lvl), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

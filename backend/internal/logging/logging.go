// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackrose-blackhat/cybershield/backend/internal/config"
)

// New returns a logger for cfg and a function that releases its output.
// Unknown levels fall back to info.
func New(cfg config.LoggingConfig) (zerolog.Logger, func() error, error) {
	out, closer, err := openOutput(cfg.Output)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, NoColor: closer != nil}
	}

	logger := zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().Timestamp().Str("component", "cybershield").Logger()

	release := func() error { return nil }
	if closer != nil {
		release = closer.Close
	}
	return logger, release, nil
}

// ParseLevel maps a level name to a zerolog level
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func openOutput(output string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr, nil, nil
	case "stdout":
		return os.Stdout, nil, nil
	}

	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, f, nil
}

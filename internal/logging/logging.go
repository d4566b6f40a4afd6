// Package logging builds the zerolog logger used across flyerkit.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/liminalpurple/flyerkit/internal/config"
	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the configured level.
// Unknown levels fall back to info.
func New(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Setup returns a stderr logger for the application
func Setup(cfg config.LogConfig) zerolog.Logger {
	return New(cfg, os.Stderr)
}

// Package log configures the process-wide zerolog logger and exposes
// component-scoped child loggers.
package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Init configures the global logger. levelName is one of the zerolog level
// strings (debug, info, warn, error); unrecognized values fall back to info.
func Init(levelName string, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var w = os.Stderr
	if pretty {
		cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		zerolog.DefaultContextLogger = nil
		l := zerolog.New(cw).With().Timestamp().Logger()
		globalLogger = l
		return
	}
	globalLogger = zerolog.New(w).With().Timestamp().Logger()
}

var globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Component returns a logger tagged with the given component name, matching
// the "component" field convention used across the scan engine.
func Component(name string) zerolog.Logger {
	return globalLogger.With().Str("component", name).Logger()
}

// Global returns the process-wide logger.
func Global() *zerolog.Logger {
	return &globalLogger
}

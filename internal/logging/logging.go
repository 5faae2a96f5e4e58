// Package logging configures zerolog's global settings and builds the
// service's logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Init applies zerolog's global level and time/duration format settings and
// returns a new logger with structured JSON output to stdout.
// Level is parsed from the given string (e.g. "debug", "info", "warn",
// "error"), defaulting to info on an unrecognized value.
func Init(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true

	return zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "happyscroll-verdict").
		Logger()
}

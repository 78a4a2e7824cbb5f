// Package logger configures the process-wide zerolog logger and hands out
// component-scoped sub-loggers. Here the components are the runtime's own
// subsystems (loader, lifecycle, dispatcher, blackboard) rather
// than an HTTP server's.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger. level is a zerolog level name
// ("debug", "info", "warn", "error"); pretty selects a human-readable
// console writer over raw JSON for a dev/prod split.
func Init(level string, pretty bool) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	log.Logger = log.With().Str("service", "plugboard").Logger()
	log.Info().Str("level", logLevel.String()).Bool("pretty", pretty).Msg("logger initialized")
}

// Component returns a sub-logger tagged with the given component name,
// e.g. logger.Component("loader").
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

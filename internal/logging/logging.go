package logging

import (
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Info logs a structured info line.
func Info(msg string, fields map[string]any) {
	logger.Info().Fields(fields).Msg(msg)
}

// Warn logs a structured warning line.
func Warn(msg string, fields map[string]any) {
	logger.Warn().Fields(fields).Msg(msg)
}

// Error logs a structured error line.
func Error(msg string, fields map[string]any) {
	logger.Error().Fields(fields).Msg(msg)
}

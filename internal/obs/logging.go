// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger returns the service-wide structured logger. Development gets
// console output; everything else logs JSON.
func NewLogger(env string) zerolog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(w).With().Timestamp().Logger()
	if env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: w})
	}
	return logger
}

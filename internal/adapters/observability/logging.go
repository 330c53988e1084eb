package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the process logger. dev/development writes colored
// console lines at debug level; anything else writes JSON at info level.
func NewLogger(env string) zerolog.Logger {
	return newLogger(env, os.Stdout)
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	level := zerolog.InfoLevel
	if isDev(env) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "hotel_detail").
		Logger()
}

func isDev(env string) bool { return env == "dev" || env == "development" }

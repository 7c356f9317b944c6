package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const service = "meeting-notifier"

// New builds the process logger. APP_ENV=development switches to a console
// writer at debug level; level, when set, overrides the environment default.
func New(appEnv, level string) zerolog.Logger {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	dev := env == "development" || env == "dev"

	var out io.Writer = os.Stdout
	lvl := zerolog.InfoLevel
	if dev {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stdout
			w.TimeFormat = "2006-01-02 15:04:05"
		})
		lvl = zerolog.DebugLevel
	}
	return newLogger(out, lvl, level)
}

func newLogger(out io.Writer, def zerolog.Level, level string) zerolog.Logger {
	lvl := def
	if level = strings.TrimSpace(level); level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = parsed
		}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", service).Logger()
}

// Nop returns a disabled logger for tests.
func Nop() zerolog.Logger {
	return zerolog.New(io.Discard)
}

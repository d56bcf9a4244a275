// Package logging configures zerolog for the webfocus-db CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at a console writer on w and sets the
// level from LOG_LEVEL. verbose forces debug.
func Setup(w io.Writer, verbose bool) zerolog.Logger {
	log.Logger = New(w, levelName(os.Getenv("LOG_LEVEL"), verbose))
	return log.Logger
}

// New returns a console logger writing to w at the named level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)}).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// Nop returns a disabled logger for tests and library callers.
func Nop() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level. Unknown values mean info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func levelName(env string, verbose bool) string {
	if verbose {
		return "debug"
	}
	return env
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

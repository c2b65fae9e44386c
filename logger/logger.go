// Package logger configures the process-wide zerolog logger and hands out
// component-scoped children of it.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var root = zerolog.New(consoleWriter()).With().Timestamp().Logger()

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

// Initialize sets the global log level. Unknown levels fall back to info.
func Initialize(level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// GetForComponent returns a logger tagged with the component name, so every
// line identifies which part of the simulator emitted it.
func GetForComponent(name string) zerolog.Logger {
	return root.With().Str("component", name).Logger()
}

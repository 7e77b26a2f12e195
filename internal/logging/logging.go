// Package logging configures the process-wide logger.
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/phuslu/log"
)

// parseLevel converts a config level string to a log.Level.
func parseLevel(level string) log.Level {
	switch level {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Setup installs the default logger: human-readable, colorized console output
// when stderr is a terminal, JSON lines otherwise.
func Setup(level string) {
	logger := log.Logger{
		Level:      parseLevel(level),
		TimeFormat: "15:04:05.000",
	}

	if isatty.IsTerminal(os.Stderr.Fd()) {
		logger.Writer = &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
			Writer:         os.Stderr,
		}
	} else {
		logger.Writer = &log.IOWriter{Writer: os.Stderr}
	}

	log.DefaultLogger = logger
}

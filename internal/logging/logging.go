// Package logging wires up the process-wide zerolog logger.
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Setup configures zerolog.Logger's global instance: a colorized console
// writer to stderr when attached to a terminal, plain JSON lines
// otherwise (headless/subagent mode), at the given level name.
func Setup(levelName string, headless bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !headless && term.IsTerminal(int(os.Stderr.Fd())) {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		logger := zerolog.New(writer).With().Timestamp().Logger()
		zerolog.DefaultContextLogger = &logger
		return logger
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}

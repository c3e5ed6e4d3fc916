// Package logging holds the two logs stowman writes: zerolog diagnostics
// for developers (stderr plus a debug file under the XDG state directory)
// and the plain-text audit log kept inside the dotfiles repository.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level maps the -v count to a zerolog level: warnings by default, then
// info, debug and trace.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SetupLogger configures the global logger for verbosity, writing to
// stderr and the debug log.
func SetupLogger(verbosity int) {
	SetupLoggerWithOutput(verbosity, os.Stderr)
}

// SetupLoggerWithOutput is SetupLogger with an explicit console writer.
// The debug log is best effort.
func SetupLoggerWithOutput(verbosity int, console io.Writer) {
	zerolog.SetGlobalLevel(Level(verbosity))

	sinks := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}}

	debugPath := DebugLogPath()
	debugFile, fileErr := openDebugLog(debugPath)
	if fileErr == nil {
		sinks = append(sinks, debugFile)
	}

	ctx := zerolog.New(io.MultiWriter(sinks...)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Debug().Err(fileErr).Str("path", debugPath).Msg("Debug log unavailable")
	}
	log.Debug().Int("verbosity", verbosity).Str("debugLog", debugPath).Msg("Logger initialized")
}

// GetLogger returns the global logger tagged with component.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// DebugLogPath is $XDG_STATE_HOME/stowman/stowman.log. The variable is
// read on every call.
func DebugLogPath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = xdg.StateHome
	}
	return filepath.Join(stateHome, "stowman", "stowman.log")
}

func openDebugLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// LogCommand records an external command before it runs.
func LogCommand(logger zerolog.Logger, cmd string, args []string, dir string) {
	logger.Debug().
		Str("command", cmd).
		Strs("args", args).
		Str("dir", dir).
		Msg("Executing command")
}

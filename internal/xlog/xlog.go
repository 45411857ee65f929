// Package xlog provides the shared structured logger for memsim's
// non-fatal diagnostics: unknown config keys, out-of-range addresses, and
// SmartSwap iteration-bound hits (see spec §7 error taxonomy).
package xlog

import (
	"os"

	"github.com/rs/zerolog"
)

// Log is the package-level logger every memsim component writes to.
var Log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
	With().Timestamp().Logger()

// SetLevel adjusts the global minimum log level, e.g. for -v on the CLI.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// Warn logs a recoverable condition that does not abort the run.
func Warn(msg string) {
	Log.Warn().Msg(msg)
}

// Warnf logs a recoverable condition with formatting.
func Warnf(format string, args ...interface{}) {
	Log.Warn().Msgf(format, args...)
}

// Error logs a failed operation whose caller already decided to continue.
func Error(msg string) {
	Log.Error().Msg(msg)
}

// Errorf logs a failed operation with formatting.
func Errorf(format string, args ...interface{}) {
	Log.Error().Msgf(format, args...)
}

// Debugf logs fine-grained diagnostic detail, hidden unless -v raises the level.
func Debugf(format string, args ...interface{}) {
	Log.Debug().Msgf(format, args...)
}

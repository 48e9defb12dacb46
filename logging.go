package reportbro

import (
	"github.com/rs/zerolog"
)

// log is used for internal invariant violations and diagnostics. Disabled by
// default so the library stays silent unless a caller opts in via WithLogger.
var log = zerolog.Nop()

// SetLogger replaces the package logger. Rendering itself never logs,
// only internal errors and diagnostics are written to the logger.
func SetLogger(logger zerolog.Logger) {
	log = logger
}

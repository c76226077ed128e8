// =============================================================================
// PayPal to GnuCash Importer - Logger Module
// =============================================================================
//
// Structured logging setup. All diagnostics go to stderr so the tool can be
// piped; only the amended ledger ever touches stdout or the output path.
//
// =============================================================================

package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the application logger. Verbose enables debug-level output
// (per-row merge and routing decisions).
func New(verbose bool) zerolog.Logger {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter creates a logger with a custom writer. Used by tests.
func NewWithWriter(w io.Writer, verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// Nop returns a disabled logger for tests that do not care about output.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// Package diag provides ambient, operator-facing diagnostic logging —
// startup configuration failures, graph-wiring faults — distinct from
// trace.Sink, which carries the simulation's own structured output
// records. It wraps github.com/joeycumines/logiface over the
// github.com/joeycumines/logiface-slog adapter, the same structured
// logging stack the teacher repository is built around.
package diag

import (
	"log/slog"
	"os"

	"github.com/joeycumines/logiface"
	logifaceslog "github.com/joeycumines/logiface-slog"
)

// Event is this package's concrete logiface event type — a type alias
// for the slog adapter's own Event, so callers never construct one
// directly.
type Event = logifaceslog.Event

// Logger is the diagnostic logger handle passed to kernel.New (via
// kernel.WithDiagLogger) and to config.Config.ValidateLogged.
type Logger = logiface.Logger[*Event]

// New builds a Logger writing JSON lines to w via the standard library's
// slog, at the given minimum level.
func New(w *os.File, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return logiface.New[*Event](logifaceslog.NewLogger(handler))
}

// Nop returns a Logger that discards everything, for callers that don't
// want ambient diagnostics (e.g. unit tests).
func Nop() *Logger {
	return New(os.Stderr, slog.LevelError+100)
}

// ConfigRejected logs a configuration validation failure.
func ConfigRejected(l *Logger, err error) {
	l.Err().Err(err).Log("configuration rejected")
}

// WiringFault logs a graph-wiring failure at connection start-up.
func WiringFault(l *Logger, connection string, err error) {
	l.Err().Str("connection", connection).Err(err).Log("connection not wired")
}

// TemporalRejection logs a past-time scheduling rejection — not fatal,
// but worth surfacing to an operator since it usually indicates a bug
// in the calling component.
func TemporalRejection(l *Logger, label string, err error) {
	l.Warning().Str("event", label).Err(err).Log("event scheduled in the past")
}

package gimp

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/transform"
	"github.com/Freedooom/gimp-sub000/undo"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gimp and its sub-packages (tile,
// transform, undo). By default nothing is logged. Pass nil to restore the
// silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-operation diagnostics (undo eviction, tile
//     copy-on-write, stale item handles skipped during undo)
//   - [slog.LevelInfo]: lifecycle events (image created, history cleared)
//   - [slog.LevelWarn]: non-fatal conditions (degenerate transform
//     coordinates, refused undo groups, failed restores)
//   - [slog.LevelError]: rejected precondition violations
//
// Example:
//
//	gimp.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	tile.SetLogger(l)
	transform.SetLogger(l)
	undo.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

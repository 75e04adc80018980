package mhw

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Enabled reports false for all levels, which
// lets the per-command debug paths below return before building attributes.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

var (
	silent = slog.New(discard{})
	active atomic.Pointer[slog.Logger]
)

func init() { active.Store(silent) }

// SetLogger installs the logger shared by mhw, blt, vdenc, vp and softos.
// Nothing is logged until it is called; nil restores the silent logger.
//
// Levels:
//   - [slog.LevelDebug]: AddCommand, resource patches, staged patch-list
//     entries, softos allocation and submission
//   - [slog.LevelInfo]: builder construction with the chosen generation and
//     row-store support
//   - [slog.LevelError]: a builder constructed without an OS interface
//
// Example:
//
//	mhw.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	active.Store(l)
}

// Logger returns the logger installed with SetLogger.
func Logger() *slog.Logger { return active.Load() }

// debugEnabled reports whether per-command debug records would be kept.
// Command emission checks it before assembling attributes.
func debugEnabled() bool {
	return active.Load().Enabled(context.Background(), slog.LevelDebug)
}

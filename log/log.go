// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over go-ethereum's slog based logger.
// Package level loggers are created with WithContext and resolve the root
// logger on every call, so SetDefault takes effect for loggers created
// before it.
package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Levels, aliased from go-ethereum.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger is the logging surface used across the module.
type Logger interface {
	With(ctx ...any) Logger
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	Enabled(ctx context.Context, level slog.Level) bool
}

// SetDefault replaces the root logger with one writing to h.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// Root returns the handler of the current root logger.
func Root() slog.Handler {
	return ethlog.Root().Handler()
}

// NewTerminalHandler returns a human readable handler filtering below lvl.
// lvl is consulted on every record, so a *slog.LevelVar can be changed later.
func NewTerminalHandler(w io.Writer, lvl slog.Leveler, useColor bool) slog.Handler {
	return &levelHandler{ethlog.NewTerminalHandlerWithLevel(w, LevelTrace, useColor), lvl}
}

// NewJSONHandler returns a handler emitting one JSON object per record.
func NewJSONHandler(w io.Writer, lvl slog.Leveler) slog.Handler {
	return &levelHandler{ethlog.JSONHandlerWithLevel(w, LevelTrace), lvl}
}

// levelHandler drops records below the current level of lvl.
type levelHandler struct {
	inner slog.Handler
	lvl   slog.Leveler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.lvl.Level() && h.inner.Enabled(ctx, level)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.lvl.Level() {
		return nil
	}
	return h.inner.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{h.inner.WithAttrs(attrs), h.lvl}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{h.inner.WithGroup(name), h.lvl}
}

// FromVerbosity converts the 0 (crit) .. 5 (trace) verbosity scale used by
// the command line into a slog level.
func FromVerbosity(v int) slog.Level {
	return ethlog.FromLegacyLevel(v)
}

// WithContext returns a logger that prepends ctx to every record.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

// Discard returns a logger dropping everything.
func Discard() Logger {
	return &fixedLogger{ethlog.NewLogger(ethlog.DiscardHandler())}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) root() ethlog.Logger { return ethlog.Root() }

func (l *lazyLogger) merge(ctx []any) []any {
	out := make([]any, 0, len(l.ctx)+len(ctx))
	return append(append(out, l.ctx...), ctx...)
}

func (l *lazyLogger) With(ctx ...any) Logger { return &lazyLogger{ctx: l.merge(ctx)} }

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.root().Trace(msg, l.merge(ctx)...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.root().Debug(msg, l.merge(ctx)...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.root().Info(msg, l.merge(ctx)...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, l.merge(ctx)...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.root().Error(msg, l.merge(ctx)...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.root().Crit(msg, l.merge(ctx)...) }

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.root().Enabled(ctx, level)
}

type fixedLogger struct {
	l ethlog.Logger
}

func (f *fixedLogger) With(ctx ...any) Logger        { return &fixedLogger{f.l.With(ctx...)} }
func (f *fixedLogger) Trace(msg string, ctx ...any) { f.l.Trace(msg, ctx...) }
func (f *fixedLogger) Debug(msg string, ctx ...any) { f.l.Debug(msg, ctx...) }
func (f *fixedLogger) Info(msg string, ctx ...any)  { f.l.Info(msg, ctx...) }
func (f *fixedLogger) Warn(msg string, ctx ...any)  { f.l.Warn(msg, ctx...) }
func (f *fixedLogger) Error(msg string, ctx ...any) { f.l.Error(msg, ctx...) }
func (f *fixedLogger) Crit(msg string, ctx ...any)  { f.l.Crit(msg, ctx...) }

func (f *fixedLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return f.l.Enabled(ctx, level)
}

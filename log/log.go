// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the logging facade used across meshstake. Records are handled by
// go-ethereum's slog based handlers so the terminal and JSON formats match the
// rest of the VeChain tooling.
package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Logger writes key/value pairs to a Handler.
type Logger = ethlog.Logger

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Root returns the root logger.
func Root() Logger {
	return ethlog.Root()
}

// SetDefault replaces the root logger.
func SetDefault(l Logger) {
	ethlog.SetDefault(l)
}

// NewLogger returns a logger with the specified handler set.
func NewLogger(h slog.Handler) Logger {
	return ethlog.NewLogger(h)
}

// New returns a new logger with the given context derived from the root logger.
func New(ctx ...any) Logger {
	return Root().With(ctx...)
}

// NewTerminalHandlerWithLevel returns a human readable handler that drops
// records below lvl.
func NewTerminalHandlerWithLevel(w io.Writer, lvl slog.Level, useColor bool) slog.Handler {
	return ethlog.NewTerminalHandlerWithLevel(w, lvl, useColor)
}

// JSONHandlerWithLevel returns a handler that writes one JSON object per record.
func JSONHandlerWithLevel(w io.Writer, lvl slog.Level) slog.Handler {
	return ethlog.JSONHandlerWithLevel(w, lvl)
}

type discardHandler struct{}

// DiscardHandler returns a handler that drops everything.
func DiscardHandler() slog.Handler {
	return discardHandler{}
}

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }

// FromLegacyLevel converts a 0 (crit) .. 5 (trace) verbosity into a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	return ethlog.FromLegacyLevel(lvl)
}

// WithContext returns a logger that resolves the root logger on every call, so
// package level loggers pick up handlers installed later by SetDefault.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) logger() Logger {
	return Root().With(l.ctx...)
}

func (l *lazyLogger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &lazyLogger{ctx: append(merged, ctx...)}
}

func (l *lazyLogger) New(ctx ...any) Logger { return l.With(ctx...) }

func (l *lazyLogger) Log(level slog.Level, msg string, ctx ...any) {
	l.logger().Log(level, msg, ctx...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.logger().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.logger().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.logger().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.logger().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.logger().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.logger().Crit(msg, ctx...) }

func (l *lazyLogger) Write(level slog.Level, msg string, attrs ...any) {
	l.logger().Write(level, msg, attrs...)
}

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.logger().Enabled(ctx, level)
}

func (l *lazyLogger) Handler() slog.Handler {
	return Root().Handler()
}

// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package log provides helper functions over the standard log/slog
// structured logging package. Debug, Info, Warn, and Error accept a
// context, message, and a series of statically typed slog.Attr
// arguments which avoid the allocation of the key/value "any" API.
// Attributes which are common to a whole operation (e.g., the actor
// of a bulk transition) may be attached to the context with With,
// so every nested log record carries them.
package log

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

type ctxKey struct{}

// With returns a copy of ctx which carries attrs after the attributes
// of its parent (if any).
func With(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	all := make([]slog.Attr, 0, len(prev)+len(attrs))
	all = append(all, prev...)
	all = append(all, attrs...)
	return context.WithValue(ctx, ctxKey{}, all)
}

func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	logAttrs(ctx, slog.LevelError, msg, attrs...)
}

// logAttrs must be called directly by the exported functions, so the
// caller of them is reported as the source of the record.
func logAttrs(
	ctx context.Context,
	level slog.Level,
	msg string,
	attrs ...slog.Attr,
) {
	l := slog.Default()
	if !l.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// skip [runtime.Callers, this function, its parent in log pkg]
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if ctxAttrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(ctxAttrs...)
	}
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}

package logger

import (
	"context"
	"errors"
	"log/slog"
)

// Multi returns a logger that writes each record to every given logger at
// that logger's own level. serve --log-file uses it to keep the console
// output and add a JSON log file.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	sinks := make(fanout, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			sinks = append(sinks, l.Handler())
		}
	}
	return slog.New(sinks)
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle gives the record to every sink even when one of them fails.
func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = fn(h)
	}
	return next
}

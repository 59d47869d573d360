package utils

import (
	"context"
	"errors"
	"log/slog"
)

// TeeHandler duplicates records across slog handlers, so a run can log to
// the console and a file with independent formats and levels.
type TeeHandler struct {
	targets []slog.Handler
}

func NewTeeHandler(targets ...slog.Handler) *TeeHandler {
	return &TeeHandler{targets: targets}
}

// Enabled reports whether at least one target wants the level.
func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.targets {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every target that accepts its level. One
// failing target does not stop the others.
func (t *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t.targets {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		// each target gets its own copy, handlers may append attrs in place
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.targets))
	for i, h := range t.targets {
		next[i] = h.WithAttrs(attrs)
	}
	return NewTeeHandler(next...)
}

func (t *TeeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.targets))
	for i, h := range t.targets {
		next[i] = h.WithGroup(name)
	}
	return NewTeeHandler(next...)
}

// Package log builds the slog logger shared by the command and its packages.
package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// MaskValue replaces the value of any attribute that may carry a secret.
const MaskValue = "***REDACTED***"

// New returns a text logger on w. It logs at warn level, or at debug level
// when verbose is set.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactHandler(handler))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// RedactHandler masks attributes whose key names a credential, so a GitHub
// token never reaches the log even at debug level.
type RedactHandler struct {
	handler slog.Handler
}

// NewRedactHandler wraps handler.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	return &RedactHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks sensitive attributes and passes the record on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(redact(a))
		return true
	})
	return h.handler.Handle(ctx, redacted)
}

// WithAttrs masks attrs before adding them.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = redact(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(out)}
}

// WithGroup delegates to the wrapped handler.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

func redact(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			out[i] = redact(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	if sensitive(a.Key) {
		return slog.String(a.Key, MaskValue)
	}
	return a
}

func sensitive(key string) bool {
	key = strings.ToLower(key)
	for _, kw := range []string{"token", "authorization", "secret", "password"} {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

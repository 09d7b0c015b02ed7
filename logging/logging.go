// Package logging builds the slog loggers used by the server and the CLI.
// Every logger redacts credentials that may end up in request attributes.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// MaskValue replaces redacted attribute values
const MaskValue = "***REDACTED***"

var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
}

var sensitiveKeywords = []string{"password", "secret", "token", "credential"}

// RedactingHandler wraps an slog.Handler and masks sensitive attributes
type RedactingHandler struct {
	handler slog.Handler
}

// NewRedactingHandler wraps handler
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactingHandler{handler: handler}
}

// Enabled delegates to the wrapped handler
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle redacts the record's attributes before passing it on
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(redact(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a handler with the redacted attributes added
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redact(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(clean)}
}

// WithGroup returns a handler with the given group name
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name)}
}

func redact(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		clean := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			clean[i] = redact(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	key := strings.ToLower(a.Key)
	if sensitiveKeys[key] {
		return slog.String(a.Key, MaskValue)
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return slog.String(a.Key, MaskValue)
		}
	}
	return a
}

// ParseLevel converts a level name (debug, info, warn, error) to slog.Level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// New creates a redacting logger writing to w. format is "text" or "json".
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewRedactingHandler(handler))
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package logging

import (
	"context"
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so call sites build structured fields without
// importing both packages.
type Attr = slog.Attr

func String(key, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Error wraps err under the conventional "error" key. A nil error
// renders as "<nil>" rather than an empty attr.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// NewNop returns a logger that drops every record, the default for
// components constructed without logging wired.
func NewNop() *slog.Logger { return slog.New(noopHandler{}) }

// NewComponentLogger stamps component onto every record the returned
// logger emits. A nil base falls back to the no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext emits a warning carrying the event_type, error_hint,
// and impact fields the console handler promotes. Missing fields get
// generic defaults so every warning names its cause and consequence.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = ensureField(attrs, FieldEventType, eventType)
	attrs = ensureField(attrs, FieldErrorHint, "check logs for details")
	attrs = ensureField(attrs, FieldImpact, "operation completed with warnings")
	logger.Warn(msg, attrsToArgs(attrs)...)
}

func ensureField(attrs []Attr, key, fallback string) []Attr {
	for _, attr := range attrs {
		if attr.Key == key {
			return attrs
		}
	}
	return append(attrs, String(key, fallback))
}

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (noopHandler) Handle(context.Context, slog.Record) error { return nil }
func (noopHandler) WithAttrs([]slog.Attr) slog.Handler        { return noopHandler{} }
func (noopHandler) WithGroup(string) slog.Handler             { return noopHandler{} }

package logger

import (
	"context"
	"log/slog"

	"github.com/nochlab/nochgpt/internal/ctxutil"
)

// ContextHandler is a slog.Handler that automatically extracts tracing
// values (sender, message id, request id) from the context and adds them
// as attributes to log records, so call sites never need to repeat them.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a new ContextHandler wrapping the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled reports whether the wrapped handler handles records at the given level.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle enriches the record with context values before delegating.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sender := ctxutil.GetSender(ctx); sender != "" {
		r.AddAttrs(slog.String("sender", sender))
	}
	if id := ctxutil.GetMessageID(ctx); id != "" {
		r.AddAttrs(slog.String("message_id", id))
	}
	if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler with the attributes applied.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler with the group applied.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

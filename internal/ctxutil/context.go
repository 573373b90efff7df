// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	senderKey    contextKey = "ctxutil.sender"
	messageIDKey contextKey = "ctxutil.messageID"
	requestIDKey contextKey = "ctxutil.requestID"
)

// WithSender adds the WhatsApp sender phone number to the context.
// The sender is used for rate limiting, conversation state lookups,
// and log correlation.
func WithSender(ctx context.Context, sender string) context.Context {
	return context.WithValue(ctx, senderKey, sender)
}

// GetSender retrieves the sender from the context.
// Returns the sender if found, empty string otherwise.
func GetSender(ctx context.Context) string {
	if v := ctx.Value(senderKey); v != nil {
		if sender, ok := v.(string); ok && sender != "" {
			return sender
		}
	}
	return ""
}

// WithMessageID adds the provider message id to the context.
func WithMessageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, messageIDKey, id)
}

// GetMessageID retrieves the message id from the context.
func GetMessageID(ctx context.Context) string {
	if v := ctx.Value(messageIDKey); v != nil {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context for tracing.
// Request ID is generated per webhook request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

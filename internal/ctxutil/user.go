// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// UserKey is the context key for the authenticated user ID.
type UserKey struct{}

// RequestIDKey is the context key for the per-request correlation ID.
type RequestIDKey struct{}

// WithUserID returns a context with the user ID embedded.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserKey{}, userID)
}

// UserFromContext returns the user ID from context, or empty string if not set.
func UserFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(UserKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID returns a context carrying the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID from context, or empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return v
	}
	return ""
}

package common

import "context"

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyUserID    ContextKey = "user_id"
	ContextKeyColdStart ContextKey = "cold_start"
)

// WithUserID adds the authenticated user ID to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	return userID, ok && userID != ""
}

// ResolveOwner returns the authenticated user when there is one and the
// caller-supplied fallback otherwise
func ResolveOwner(ctx context.Context, fallback string) string {
	if userID, ok := GetUserID(ctx); ok {
		return userID
	}
	return fallback
}

// WithColdStart marks the first invocation of a lambda container
func WithColdStart(ctx context.Context, cold bool) context.Context {
	return context.WithValue(ctx, ContextKeyColdStart, cold)
}

// IsColdStart reports whether ctx belongs to a cold start invocation
func IsColdStart(ctx context.Context) bool {
	cold, _ := ctx.Value(ContextKeyColdStart).(bool)
	return cold
}

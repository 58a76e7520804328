package telemetry

import "context"

// invocationIDKey is the context key type used to store an invocation ID.
type invocationIDKey struct{}

// WithInvocationID returns a child context that carries the provided invocation ID.
// If ctx is nil, context.Background() is used.
func WithInvocationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, invocationIDKey{}, id)
}

// InvocationIDFromContext returns the invocation ID from ctx, if present.
// Returns "", false if the value is missing or not a non-empty string.
func InvocationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(invocationIDKey{})
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

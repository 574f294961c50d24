package auth

import "context"

type ctxKey string

const claimsKey ctxKey = "authClaims"

// WithClaims stores decoded token claims on the context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// FromContext returns the claims attached by the middleware, or nil.
func FromContext(ctx context.Context) *Claims {
	if c, ok := ctx.Value(claimsKey).(*Claims); ok {
		return c
	}
	return nil
}

// Subject returns the authenticated user id, or "" when unauthenticated.
func Subject(ctx context.Context) string {
	if c := FromContext(ctx); c != nil {
		return c.Subject
	}
	return ""
}

// Package auth resolves bearer tokens into a Principal and guards routes with it.
package auth

import "context"

// Principal is the authenticated caller. Staff may read and write everything;
// everyone else reads the catalog and manages their own orders.
type Principal struct {
	UserID  string
	IsStaff bool
}

type contextKey string

const principalKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// UserID returns the caller id, or "" for anonymous contexts.
func UserID(ctx context.Context) string {
	p, _ := FromContext(ctx)
	return p.UserID
}

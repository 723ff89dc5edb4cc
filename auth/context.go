package auth

import (
	"context"
)

// contextKey is a private type for context keys, preventing collisions with
// keys defined in other packages.
type contextKey string

const userContextKey contextKey = "auth_user"

// WithUser returns a child context carrying the authenticated user. The gate
// is the only writer; handlers read it back with UserFromContext.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the authenticated user attached by the gate. The
// bool reports whether a user was present.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}

package auth

import (
	"context"

	"github.com/skufinder/skufinder/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithSession attaches the authenticated session to the context.
func ContextWithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SessionFromContext retrieves the authenticated session from the
// context. Returns nil if the request is unauthenticated.
func SessionFromContext(ctx context.Context) *model.Session {
	sess, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return nil
	}
	return sess
}

// EmailFromContext is a convenience accessor for the logged-in email.
// Returns empty string if not authenticated.
func EmailFromContext(ctx context.Context) string {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return ""
	}
	return sess.Email
}

// IsAdmin reports whether the context carries an admin session.
func IsAdmin(ctx context.Context) bool {
	sess := SessionFromContext(ctx)
	return sess != nil && sess.Role == model.RoleAdmin
}

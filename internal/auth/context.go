package auth

import (
	"context"

	"studydash/internal/store"
)

type contextKey int

const sessionContextKey contextKey = iota

// WithSession returns a context carrying the authenticated session.
func WithSession(ctx context.Context, s *store.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the authenticated session placed on the
// request context by RequireSession.
func SessionFromContext(ctx context.Context) (*store.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*store.Session)
	return s, ok
}

package access

import (
	"context"
	"time"
)

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// View is the screen a session is working in. Clients only look up orders;
// admins also register and update them.
type View string

const (
	ViewLookup View = "lookup"
	ViewEntry  View = "entry"
)

// DefaultView is the view a new session of role opens on.
func DefaultView(role Role) View {
	if role == RoleAdmin {
		return ViewEntry
	}
	return ViewLookup
}

// Allows reports whether role may open view.
func (r Role) Allows(view View) bool {
	switch view {
	case ViewLookup:
		return r == RoleClient || r == RoleAdmin
	case ViewEntry:
		return r == RoleAdmin
	}
	return false
}

// Session is the per-request access state, carried in the request context.
type Session struct {
	ID        string
	Role      Role
	View      View
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

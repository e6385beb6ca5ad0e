// Package session holds the authenticated-user object shared by the web and
// terminal front ends, and the signed token the web UI keeps it in.
package session

import (
	"context"

	"expensetracker/internal/core"
)

// Session is the logged-in user. A nil *Session means unauthenticated.
type Session struct {
	UserID   int64
	Username string
	Budget   core.Money
}

func New(u core.User) *Session {
	return &Session{UserID: u.ID, Username: u.Username, Budget: u.Budget}
}

// User returns the session's user for service calls.
func (s *Session) User() core.User {
	return core.User{ID: s.UserID, Username: s.Username, Budget: s.Budget}
}

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by NewContext, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

package domain

import (
	"strings"
	"time"
)

// IdentityKind tells which column owns a cart row.
type IdentityKind string

const (
	IdentityUser    IdentityKind = "user"
	IdentitySession IdentityKind = "session"
)

// Identity is the resolved owner of a cart: an authenticated user or an anonymous session, never both.
type Identity struct {
	Kind  IdentityKind
	Value string
}

// ResolveIdentity prefers the user id and falls back to the session id.
func ResolveIdentity(userID, sessionID string) (Identity, error) {
	if u := strings.TrimSpace(userID); u != "" {
		return Identity{Kind: IdentityUser, Value: u}, nil
	}
	if s := strings.TrimSpace(sessionID); s != "" {
		return Identity{Kind: IdentitySession, Value: s}, nil
	}
	return Identity{}, ErrNoIdentity
}

// UserID returns the user id or nil for session identities.
func (i Identity) UserID() *string {
	if i.Kind != IdentityUser {
		return nil
	}
	v := i.Value
	return &v
}

// SessionID returns the session id or nil for user identities.
func (i Identity) SessionID() *string {
	if i.Kind != IdentitySession {
		return nil
	}
	v := i.Value
	return &v
}

type CartItem struct {
	ID        int64
	UserID    *string
	SessionID *string
	ProductID int64
	Quantity  int
	CreatedAt time.Time
	Product   *Product
}

package domain

import (
	"errors"
	"time"
)

var (
	ErrMissingToken    = errors.New("missing token")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
)

// Session is the identity reconstructed from a bearer token on every request.
// It is never persisted; a nil *Session means the caller is anonymous.
type Session struct {
	UserID    string
	Role      Role
	ExpiresAt time.Time
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

package service

import "github.com/plantpal/plantpal-api/internal/core/domain"

// RequireAuthenticated rejects anonymous callers.
func RequireAuthenticated(session *domain.Session) error {
	if session == nil {
		return domain.ErrUnauthenticated
	}
	return nil
}

// RequireAdmin rejects anonymous callers and non-admin sessions alike.
func RequireAdmin(session *domain.Session) error {
	if !session.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

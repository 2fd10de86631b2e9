package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/plantpal/plantpal-api/internal/core/ports"
)

// SessionKey is the echo context key holding the caller's *domain.Session.
// The value is nil for anonymous callers.
const SessionKey = "session"

// Session resolves the Authorization header into a session and injects it
// into the context. It never rejects a request: a missing, malformed, or
// expired token leaves the caller anonymous and each operation decides what
// that means.
func Session(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			c.Set(SessionKey, auth.ResolveSession(c.Request().Context(), header))
			return next(c)
		}
	}
}

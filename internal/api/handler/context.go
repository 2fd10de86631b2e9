package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/plantpal/plantpal-api/internal/api/middleware"
	"github.com/plantpal/plantpal-api/internal/core/domain"
)

// ctxSession returns the session injected by middleware.Session, or nil for
// anonymous callers. Resolvers pass it to the services unchanged; the
// services own the authorization decision.
func ctxSession(c echo.Context) *domain.Session {
	s, _ := c.Get(middleware.SessionKey).(*domain.Session)
	return s
}

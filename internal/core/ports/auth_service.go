package ports

import (
	"context"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token    string
	Role     domain.Role
	Username string
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	// ResolveSession never fails: a missing or unusable credential yields nil.
	ResolveSession(ctx context.Context, authHeader string) *domain.Session
}

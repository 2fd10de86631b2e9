package ports

import (
	"context"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

// CredentialRepository persists registered users.
type CredentialRepository interface {
	// FindByUsername returns domain.ErrUserNotFound when no user matches exactly.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Count returns the total number of registered users.
	Count(ctx context.Context) (int64, error)
	// Create stores the user and returns it with its generated ID. A clash on
	// the unique username index is reported as domain.ErrDuplicateUsername.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

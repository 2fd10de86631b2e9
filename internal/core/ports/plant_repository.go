package ports

import (
	"context"
	"time"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

// PlantRepository defines persistence operations for owned plants.
// Mutations take the owner ID as part of the filter so that another user's
// plant simply does not match.
type PlantRepository interface {
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Plant, error)
	// FindByID retrieves a plant by ID. When ownerID is non-empty the lookup
	// is additionally filtered by owner. Unknown or malformed IDs yield
	// domain.ErrPlantNotFound.
	FindByID(ctx context.Context, id, ownerID string) (*domain.Plant, error)
	Create(ctx context.Context, p *domain.Plant) (*domain.Plant, error)
	UpdateLastWatered(ctx context.Context, id, ownerID string, at time.Time) error
	// Delete removes the plant matching (id, ownerID) and returns the number
	// of removed documents.
	Delete(ctx context.Context, id, ownerID string) (int64, error)
	// CountBySpecies counts plants referencing the given species.
	CountBySpecies(ctx context.Context, speciesID string) (int64, error)
}

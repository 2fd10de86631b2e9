package ports

import (
	"context"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

// SpeciesRepository defines persistence operations for the species catalog.
// Implementations apply field defaults when decoding stored documents.
type SpeciesRepository interface {
	FindAll(ctx context.Context) ([]domain.Species, error)
	// FindByID returns domain.ErrSpeciesNotFound for unknown or malformed IDs.
	FindByID(ctx context.Context, id string) (*domain.Species, error)
	Create(ctx context.Context, s *domain.Species) (*domain.Species, error)
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// SpeciesCache stores a copy of the full catalog. A miss is (nil, false, nil).
type SpeciesCache interface {
	Get(ctx context.Context) ([]domain.Species, bool, error)
	Set(ctx context.Context, species []domain.Species) error
	Invalidate(ctx context.Context) error
}

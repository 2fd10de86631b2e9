package ports

import (
	"context"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

// GardenService defines use-case operations on the caller's own plants.
type GardenService interface {
	MyPlants(ctx context.Context, session *domain.Session) ([]domain.Plant, error)
	AddPlant(ctx context.Context, session *domain.Session, name, speciesID string) (*domain.Plant, error)
	WaterPlant(ctx context.Context, session *domain.Session, id string) (*domain.Plant, error)
	DeletePlant(ctx context.Context, session *domain.Session, id string) (bool, error)
}

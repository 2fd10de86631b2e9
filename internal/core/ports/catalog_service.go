package ports

import (
	"context"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

// AddSpeciesInput carries the fields of a new catalog entry.
type AddSpeciesInput struct {
	Name                 string
	WateringIntervalDays int
	ImageURL             string
	Description          string
	FunFact              string
	Fertilizer           string
	LightLevel           int
}

// CatalogService defines use-case operations on the species catalog.
type CatalogService interface {
	ListSpecies(ctx context.Context) ([]domain.Species, error)
	AddSpecies(ctx context.Context, session *domain.Session, input AddSpeciesInput) (*domain.Species, error)
	DeleteSpecies(ctx context.Context, session *domain.Session, id string) (bool, error)
	// SpeciesOf resolves the species a plant references, or nil. It never fails.
	SpeciesOf(ctx context.Context, plant domain.Plant) *domain.Species
}

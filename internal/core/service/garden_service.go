package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/plantpal/plantpal-api/internal/core/domain"
	"github.com/plantpal/plantpal-api/internal/core/ports"
)

// GardenService implements the operations on a user's own plants.
type GardenService struct {
	plants  ports.PlantRepository
	species ports.SpeciesRepository
	log     zerolog.Logger
	now     func() time.Time
}

func NewGardenService(plants ports.PlantRepository, species ports.SpeciesRepository, log zerolog.Logger) *GardenService {
	return &GardenService{plants: plants, species: species, log: log, now: time.Now}
}

// MyPlants lists the caller's plants. Anonymous callers get an empty list.
func (s *GardenService) MyPlants(ctx context.Context, session *domain.Session) ([]domain.Plant, error) {
	if session == nil {
		return []domain.Plant{}, nil
	}

	plants, err := s.plants.FindByOwner(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("my plants: %w", err)
	}
	if plants == nil {
		plants = []domain.Plant{}
	}
	return plants, nil
}

// AddPlant creates a plant owned by the caller. The species must exist at
// call time; the reference is not re-validated later.
func (s *GardenService) AddPlant(ctx context.Context, session *domain.Session, name, speciesID string) (*domain.Plant, error) {
	if err := RequireAuthenticated(session); err != nil {
		return nil, err
	}

	if _, err := s.species.FindByID(ctx, speciesID); err != nil {
		if errors.Is(err, domain.ErrSpeciesNotFound) {
			return nil, domain.ErrSpeciesNotFound
		}
		return nil, fmt.Errorf("add plant: find species: %w", err)
	}

	created, err := s.plants.Create(ctx, &domain.Plant{
		OwnerID:       session.UserID,
		Name:          name,
		SpeciesID:     speciesID,
		LastWateredAt: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("add plant: %w", err)
	}

	s.log.Info().Str("plant_id", created.ID).Str("user_id", session.UserID).Msg("plant added")
	return created, nil
}

// WaterPlant stamps the caller's plant as watered now and returns the stored
// record. Plants of other users, unknown IDs and plants deleted concurrently
// all surface as domain.ErrPlantNotFound.
func (s *GardenService) WaterPlant(ctx context.Context, session *domain.Session, id string) (*domain.Plant, error) {
	if err := RequireAuthenticated(session); err != nil {
		return nil, err
	}

	if err := s.plants.UpdateLastWatered(ctx, id, session.UserID, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("water plant: %w", err)
	}

	plant, err := s.plants.FindByID(ctx, id, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrPlantNotFound) {
			return nil, domain.ErrPlantNotFound
		}
		return nil, fmt.Errorf("water plant: %w", err)
	}
	return plant, nil
}

// DeletePlant removes the caller's plant and reports whether exactly one
// record was removed. Anonymous callers get false, not an error.
func (s *GardenService) DeletePlant(ctx context.Context, session *domain.Session, id string) (bool, error) {
	if session == nil {
		return false, nil
	}

	n, err := s.plants.Delete(ctx, id, session.UserID)
	if err != nil {
		return false, fmt.Errorf("delete plant: %w", err)
	}
	return n == 1, nil
}

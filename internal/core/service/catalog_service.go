package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/plantpal/plantpal-api/internal/core/domain"
	"github.com/plantpal/plantpal-api/internal/core/ports"
)

// CatalogService implements the species catalog operations.
type CatalogService struct {
	species ports.SpeciesRepository
	plants  ports.PlantRepository
	cache   ports.SpeciesCache // optional
	log     zerolog.Logger
}

// NewCatalogService returns a CatalogService. cache may be nil, in which case
// every ListSpecies call reads the repository.
func NewCatalogService(
	species ports.SpeciesRepository,
	plants ports.PlantRepository,
	cache ports.SpeciesCache,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{species: species, plants: plants, cache: cache, log: log}
}

// ListSpecies returns the whole catalog, serving it from the cache when possible.
// Cache failures are logged and bypassed.
func (s *CatalogService) ListSpecies(ctx context.Context) ([]domain.Species, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("species cache read failed, falling back to store")
		} else if ok {
			return cached, nil
		}
	}

	all, err := s.species.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list species: %w", err)
	}
	if all == nil {
		all = []domain.Species{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, all); err != nil {
			s.log.Warn().Err(err).Msg("species cache write failed")
		}
	}
	return all, nil
}

// AddSpecies inserts a catalog entry. Only administrators may call it; the
// fields themselves are stored as given.
func (s *CatalogService) AddSpecies(ctx context.Context, session *domain.Session, in ports.AddSpeciesInput) (*domain.Species, error) {
	if err := RequireAdmin(session); err != nil {
		return nil, err
	}

	created, err := s.species.Create(ctx, &domain.Species{
		Name:                 in.Name,
		WateringIntervalDays: in.WateringIntervalDays,
		ImageURL:             in.ImageURL,
		Description:          in.Description,
		FunFact:              in.FunFact,
		Fertilizer:           in.Fertilizer,
		LightLevel:           in.LightLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("add species: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info().Str("species_id", created.ID).Str("user_id", session.UserID).Msg("species added")
	return created, nil
}

// DeleteSpecies removes a catalog entry unless a plant still references it.
// The reference count and the delete are separate store calls, so a plant
// added in between is not detected.
func (s *CatalogService) DeleteSpecies(ctx context.Context, session *domain.Session, id string) (bool, error) {
	if err := RequireAdmin(session); err != nil {
		return false, err
	}

	refs, err := s.plants.CountBySpecies(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete species: count references: %w", err)
	}
	if refs > 0 {
		return false, domain.ErrReferencedByPlants
	}

	deleted, err := s.species.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete species: %w", err)
	}

	if deleted {
		s.invalidate(ctx)
		s.log.Info().Str("species_id", id).Str("user_id", session.UserID).Msg("species deleted")
	}
	return deleted, nil
}

// SpeciesOf resolves the species referenced by plant. Absent, malformed or
// dangling references and storage errors all resolve to nil.
func (s *CatalogService) SpeciesOf(ctx context.Context, plant domain.Plant) *domain.Species {
	if plant.SpeciesID == "" {
		return nil
	}

	sp, err := s.species.FindByID(ctx, plant.SpeciesID)
	if err != nil {
		if !errors.Is(err, domain.ErrSpeciesNotFound) {
			s.log.Warn().Err(err).Str("plant_id", plant.ID).Msg("species lookup failed")
		}
		return nil
	}
	return sp
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("species cache invalidation failed")
	}
}

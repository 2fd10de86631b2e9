package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plantpal/plantpal-api/internal/api/metrics"
	"github.com/plantpal/plantpal-api/internal/core/domain"
)

const (
	speciesCatalogKey = "species:catalog"
	// DefaultSpeciesTTL bounds staleness when another instance edits the catalog.
	DefaultSpeciesTTL = 5 * time.Minute
)

// SpeciesCache stores the defaulted species catalog as one JSON value.
// It implements ports.SpeciesCache.
type SpeciesCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewSpeciesCache wraps client. A non-positive ttl falls back to DefaultSpeciesTTL.
func NewSpeciesCache(client redis.Cmdable, ttl time.Duration) *SpeciesCache {
	if ttl <= 0 {
		ttl = DefaultSpeciesTTL
	}
	return &SpeciesCache{client: client, ttl: ttl}
}

// Get returns the cached catalog. ok is false on a miss.
func (c *SpeciesCache) Get(ctx context.Context) ([]domain.Species, bool, error) {
	raw, err := c.client.Get(ctx, speciesCatalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.SpeciesCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.SpeciesCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("species cache get: %w", err)
	}

	var out []domain.Species
	if err := json.Unmarshal(raw, &out); err != nil {
		metrics.SpeciesCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("species cache decode: %w", err)
	}
	metrics.SpeciesCacheTotal.WithLabelValues("hit").Inc()
	return out, true, nil
}

func (c *SpeciesCache) Set(ctx context.Context, species []domain.Species) error {
	raw, err := json.Marshal(species)
	if err != nil {
		return fmt.Errorf("species cache encode: %w", err)
	}
	return c.client.Set(ctx, speciesCatalogKey, raw, c.ttl).Err()
}

// Invalidate drops the cached catalog so the next read goes to MongoDB.
func (c *SpeciesCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, speciesCatalogKey).Err()
}

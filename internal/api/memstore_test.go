package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

// memStore backs all three repository ports in memory for router tests.
type memStore struct {
	mu      sync.Mutex
	seq     int
	users   map[string]domain.User
	species map[string]domain.Species
	plants  map[string]domain.Plant
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]domain.User{},
		species: map[string]domain.Species{},
		plants:  map[string]domain.Plant{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

type memUsers struct{ *memStore }

func (r memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r memUsers) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return nil, domain.ErrDuplicateUsername
	}
	created := *u
	created.ID = r.nextID("user")
	r.users[created.Username] = created
	return &created, nil
}

type memSpecies struct{ *memStore }

func (r memSpecies) FindAll(context.Context) ([]domain.Species, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Species, 0, len(r.species))
	for _, s := range r.species {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memSpecies) FindByID(_ context.Context, id string) (*domain.Species, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.species[id]
	if !ok {
		return nil, domain.ErrSpeciesNotFound
	}
	return &s, nil
}

func (r memSpecies) Create(_ context.Context, s *domain.Species) (*domain.Species, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *s
	created.ID = r.nextID("species")
	r.species[created.ID] = created
	return &created, nil
}

func (r memSpecies) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.species[id]; !ok {
		return false, nil
	}
	delete(r.species, id)
	return true, nil
}

type memPlants struct{ *memStore }

func (r memPlants) owned(id, ownerID string) (domain.Plant, bool) {
	p, ok := r.plants[id]
	if !ok || (ownerID != "" && p.OwnerID != ownerID) {
		return domain.Plant{}, false
	}
	return p, true
}

func (r memPlants) FindByOwner(_ context.Context, ownerID string) ([]domain.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Plant
	for _, p := range r.plants {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPlants) FindByID(_ context.Context, id, ownerID string) (*domain.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.owned(id, ownerID)
	if !ok {
		return nil, domain.ErrPlantNotFound
	}
	return &p, nil
}

func (r memPlants) Create(_ context.Context, p *domain.Plant) (*domain.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *p
	created.ID = r.nextID("plant")
	r.plants[created.ID] = created
	return &created, nil
}

func (r memPlants) UpdateLastWatered(_ context.Context, id, ownerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.owned(id, ownerID); ok {
		p.LastWateredAt = at
		r.plants[id] = p
	}
	return nil
}

func (r memPlants) Delete(_ context.Context, id, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owned(id, ownerID); !ok {
		return 0, nil
	}
	delete(r.plants, id)
	return 1, nil
}

func (r memPlants) CountBySpecies(_ context.Context, speciesID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.plants {
		if p.SpeciesID == speciesID {
			n++
		}
	}
	return n, nil
}

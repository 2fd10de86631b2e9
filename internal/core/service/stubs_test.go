package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubCredentialRepo struct {
	users     map[string]*domain.User
	creates   int
	findErr   error
	countErr  error
	createErr error
}

func newStubCredentialRepo() *stubCredentialRepo {
	return &stubCredentialRepo{users: make(map[string]*domain.User)}
}

func (r *stubCredentialRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubCredentialRepo) Count(_ context.Context) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.users)), nil
}

func (r *stubCredentialRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrDuplicateUsername
	}
	r.creates++
	clone := *user
	clone.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	r.users[clone.Username] = &clone
	out := clone
	return &out, nil
}

type stubSpeciesRepo struct {
	byID    map[string]domain.Species
	nextID  int
	findErr error
	lookups int
}

func newStubSpeciesRepo(seed ...domain.Species) *stubSpeciesRepo {
	r := &stubSpeciesRepo{byID: make(map[string]domain.Species)}
	for _, s := range seed {
		r.byID[s.ID] = s
	}
	return r
}

func (r *stubSpeciesRepo) FindAll(_ context.Context) ([]domain.Species, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := make([]domain.Species, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubSpeciesRepo) FindByID(_ context.Context, id string) (*domain.Species, error) {
	r.lookups++
	if r.findErr != nil {
		return nil, r.findErr
	}
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSpeciesNotFound
	}
	return &s, nil
}

func (r *stubSpeciesRepo) Create(_ context.Context, s *domain.Species) (*domain.Species, error) {
	r.nextID++
	clone := *s
	clone.ID = fmt.Sprintf("species-%d", r.nextID)
	r.byID[clone.ID] = clone
	return &clone, nil
}

func (r *stubSpeciesRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

// stubPlantRepo mirrors the owner scoping the Mongo filters apply.
type stubPlantRepo struct {
	byID        map[string]domain.Plant
	nextID      int
	lastScope   string // ownerID passed to the last scoped call
	deleteAfter bool   // simulate a concurrent delete right after UpdateLastWatered
}

func newStubPlantRepo(seed ...domain.Plant) *stubPlantRepo {
	r := &stubPlantRepo{byID: make(map[string]domain.Plant)}
	for _, p := range seed {
		r.byID[p.ID] = p
	}
	return r
}

func (r *stubPlantRepo) FindByOwner(_ context.Context, ownerID string) ([]domain.Plant, error) {
	var out []domain.Plant
	for _, p := range r.byID {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPlantRepo) FindByID(_ context.Context, id, ownerID string) (*domain.Plant, error) {
	r.lastScope = ownerID
	p, ok := r.byID[id]
	if !ok || (ownerID != "" && p.OwnerID != ownerID) {
		return nil, domain.ErrPlantNotFound
	}
	return &p, nil
}

func (r *stubPlantRepo) Create(_ context.Context, p *domain.Plant) (*domain.Plant, error) {
	r.nextID++
	clone := *p
	clone.ID = fmt.Sprintf("plant-%d", r.nextID)
	r.byID[clone.ID] = clone
	return &clone, nil
}

func (r *stubPlantRepo) UpdateLastWatered(_ context.Context, id, ownerID string, at time.Time) error {
	r.lastScope = ownerID
	p, ok := r.byID[id]
	if ok && p.OwnerID == ownerID {
		p.LastWateredAt = at
		r.byID[id] = p
	}
	if r.deleteAfter {
		delete(r.byID, id)
	}
	return nil
}

func (r *stubPlantRepo) Delete(_ context.Context, id, ownerID string) (int64, error) {
	r.lastScope = ownerID
	p, ok := r.byID[id]
	if !ok || p.OwnerID != ownerID {
		return 0, nil
	}
	delete(r.byID, id)
	return 1, nil
}

func (r *stubPlantRepo) CountBySpecies(_ context.Context, speciesID string) (int64, error) {
	var n int64
	for _, p := range r.byID {
		if p.SpeciesID == speciesID {
			n++
		}
	}
	return n, nil
}

type stubSpeciesCache struct {
	data        []domain.Species
	hit         bool
	getErr      error
	sets        int
	invalidated int
}

func (c *stubSpeciesCache) Get(_ context.Context) ([]domain.Species, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.data, c.hit, nil
}

func (c *stubSpeciesCache) Set(_ context.Context, species []domain.Species) error {
	c.sets++
	c.data = species
	c.hit = true
	return nil
}

func (c *stubSpeciesCache) Invalidate(_ context.Context) error {
	c.invalidated++
	c.data = nil
	c.hit = false
	return nil
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func adminSession() *domain.Session {
	return &domain.Session{UserID: "admin-1", Role: domain.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}
}

func userSession(id string) *domain.Session {
	return &domain.Session{UserID: id, Role: domain.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
}

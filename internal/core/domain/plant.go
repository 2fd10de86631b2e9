package domain

import (
	"errors"
	"time"
)

var ErrPlantNotFound = errors.New("plant not found")

// Plant is a houseplant owned by exactly one user. OwnerID is set at creation
// and is the only anchor for authorizing mutations.
type Plant struct {
	ID            string
	OwnerID       string
	Name          string
	SpeciesID     string
	LastWateredAt time.Time
}

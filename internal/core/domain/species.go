package domain

import "errors"

// Defaults applied when a stored species document lacks a field.
const (
	DefaultSpeciesDescription = "No description."
	DefaultSpeciesFunFact     = "No fun facts."
	DefaultSpeciesFertilizer  = "Universal"
	DefaultSpeciesLightLevel  = 3
)

var (
	ErrSpeciesNotFound    = errors.New("species not found")
	ErrReferencedByPlants = errors.New("species is referenced by plants")
)

// Species is a catalog entry describing how to care for a kind of plant.
// LightLevel uses a 1 (shade) to 5 (full sun) scale.
type Species struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	WateringIntervalDays int    `json:"wateringInterval"`
	ImageURL             string `json:"imageUrl"`
	Description          string `json:"description"`
	FunFact              string `json:"funFact"`
	Fertilizer           string `json:"fertilizer"`
	LightLevel           int    `json:"lightLevel"`
}

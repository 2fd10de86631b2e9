package handler

import (
	"errors"

	"github.com/plantpal/plantpal-api/internal/core/domain"
)

// Operation error codes reported in the response envelope.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeSpeciesNotFound    = "SPECIES_NOT_FOUND"
	CodeReferencedByPlants = "REFERENCED_BY_PLANTS"
	CodePlantNotFound      = "PLANT_NOT_FOUND"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInternal           = "INTERNAL"
)

const internalMessage = "internal server error"

// OperationError is one entry of the "errors" list.
type OperationError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// operationErrorFor maps a resolver error to its envelope entry. known is
// false for errors without a code; those must be logged by the caller and
// are reported with a generic message.
func operationErrorFor(err error) (oe OperationError, known bool) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return OperationError{Message: "authentication required", Code: CodeUnauthenticated}, true
	case errors.Is(err, domain.ErrForbidden):
		return OperationError{Message: "admin role required", Code: CodeForbidden}, true
	case errors.Is(err, domain.ErrSpeciesNotFound):
		return OperationError{Message: domain.ErrSpeciesNotFound.Error(), Code: CodeSpeciesNotFound}, true
	case errors.Is(err, domain.ErrReferencedByPlants):
		return OperationError{Message: domain.ErrReferencedByPlants.Error(), Code: CodeReferencedByPlants}, true
	case errors.Is(err, domain.ErrPlantNotFound):
		return OperationError{Message: domain.ErrPlantNotFound.Error(), Code: CodePlantNotFound}, true
	}
	return OperationError{Message: internalMessage, Code: CodeInternal}, false
}

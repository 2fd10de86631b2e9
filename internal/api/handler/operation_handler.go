package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/plantpal/plantpal-api/internal/api/metrics"
	"github.com/plantpal/plantpal-api/internal/core/domain"
	"github.com/plantpal/plantpal-api/internal/core/ports"
)

// resolver implements one named operation. Returning an *echo.HTTPError
// marks the request itself as malformed.
type resolver func(c echo.Context, args json.RawMessage) (any, error)

// OperationHandler serves the single operation endpoint and dispatches by
// operation name.
type OperationHandler struct {
	auth      ports.AuthService
	catalog   ports.CatalogService
	garden    ports.GardenService
	log       zerolog.Logger
	resolvers map[string]resolver
}

func NewOperationHandler(
	auth ports.AuthService,
	catalog ports.CatalogService,
	garden ports.GardenService,
	log zerolog.Logger,
) *OperationHandler {
	h := &OperationHandler{auth: auth, catalog: catalog, garden: garden, log: log}
	h.resolvers = map[string]resolver{
		"register":      h.register,
		"login":         h.login,
		"getSpecies":    h.getSpecies,
		"getMyPlants":   h.getMyPlants,
		"addSpecies":    h.addSpecies,
		"deleteSpecies": h.deleteSpecies,
		"addPlant":      h.addPlant,
		"waterPlant":    h.waterPlant,
		"deletePlant":   h.deletePlant,
	}
	return h
}

// Operations lists the supported operation names in sorted order.
func (h *OperationHandler) Operations() []string {
	names := make([]string, 0, len(h.resolvers))
	for name := range h.resolvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OperationRequest is the body of POST /v1/operations.
type OperationRequest struct {
	Operation string          `json:"operation" validate:"required" example:"getSpecies"`
	Arguments json.RawMessage `json:"arguments,omitempty" swaggertype:"object"`
}

// OperationResponse carries the result keyed by operation name. On failure
// the result is null and Errors holds one entry.
type OperationResponse struct {
	Data   map[string]any   `json:"data"`
	Errors []OperationError `json:"errors,omitempty"`
}

// Execute runs one operation.
//
// @Summary      Execute an operation
// @Description  Runs register, login, getSpecies, getMyPlants, addSpecies, deleteSpecies, addPlant, waterPlant or deletePlant.
// @Description  Operation failures are reported in "errors" with status 200.
// @Tags         operations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      OperationRequest   true  "Operation name and arguments"
// @Success      200   {object}  OperationResponse
// @Failure      400   {object}  OperationResponse
// @Router       /v1/operations [post]
func (h *OperationHandler) Execute(c echo.Context) error {
	var req OperationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resolve, ok := h.resolvers[req.Operation]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown operation %q", req.Operation))
	}

	start := time.Now()
	result, err := resolve(c, req.Arguments)
	metrics.OperationDuration.WithLabelValues(req.Operation).Observe(time.Since(start).Seconds())

	var he *echo.HTTPError
	if errors.As(err, &he) {
		metrics.OperationsTotal.WithLabelValues(req.Operation, metrics.OutcomeRejected).Inc()
		return he
	}

	resp := OperationResponse{Data: map[string]any{req.Operation: result}}
	if err != nil {
		oe, known := operationErrorFor(err)
		if !known {
			h.log.Error().
				Err(err).
				Str("operation", req.Operation).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("operation failed")
		}
		resp.Data[req.Operation] = nil
		resp.Errors = []OperationError{oe}
		metrics.OperationsTotal.WithLabelValues(req.Operation, metrics.OutcomeError).Inc()
	} else {
		metrics.OperationsTotal.WithLabelValues(req.Operation, metrics.OutcomeOK).Inc()
	}

	return c.JSON(http.StatusOK, resp)
}

// decodeArgs strictly decodes raw into dst and validates it. Absent or null
// arguments decode as an empty object.
func decodeArgs(c echo.Context, raw json.RawMessage, dst any) error {
	if len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid arguments: "+err.Error())
		}
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// ── Accounts ──────────────────────────────────────────────────────────────────

type registerArgs struct {
	Username string `json:"username" validate:"required"`
	// bcrypt ignores input past 72 bytes.
	Password string `json:"password" validate:"required,max=72"`
}

type loginArgs struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthPayload is the result of register and login. Expected failures are
// reported in Error with the other fields empty.
type AuthPayload struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
	Error    string `json:"error"`
}

func authPayload(res *ports.AuthResult) AuthPayload {
	return AuthPayload{Token: res.Token, Role: string(res.Role), Username: res.Username}
}

func (h *OperationHandler) register(c echo.Context, raw json.RawMessage) (any, error) {
	var args registerArgs
	if err := decodeArgs(c, raw, &args); err != nil {
		return nil, err
	}

	res, err := h.auth.Register(c.Request().Context(), args.Username, args.Password)
	if errors.Is(err, domain.ErrDuplicateUsername) {
		return AuthPayload{Error: domain.ErrDuplicateUsername.Error()}, nil
	}
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(res.Role)).Inc()
	return authPayload(res), nil
}

func (h *OperationHandler) login(c echo.Context, raw json.RawMessage) (any, error) {
	var args loginArgs
	if err := decodeArgs(c, raw, &args); err != nil {
		return nil, err
	}

	res, err := h.auth.Login(c.Request().Context(), args.Username, args.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return AuthPayload{Error: domain.ErrInvalidCredentials.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	return authPayload(res), nil
}

// ── Catalog ───────────────────────────────────────────────────────────────────

type noArgs struct{}

type addSpeciesArgs struct {
	Name             string `json:"name"`
	WateringInterval int    `json:"wateringInterval"`
	ImageURL         string `json:"imageUrl"`
	Description      string `json:"description"`
	FunFact          string `json:"funFact"`
	Fertilizer       string `json:"fertilizer"`
	LightLevel       int    `json:"lightLevel"`
}

type idArgs struct {
	ID string `json:"id" validate:"required"`
}

func (h *OperationHandler) getSpecies(c echo.Context, raw json.RawMessage) (any, error) {
	if err := decodeArgs(c, raw, &noArgs{}); err != nil {
		return nil, err
	}
	return h.catalog.ListSpecies(c.Request().Context())
}

func (h *OperationHandler) addSpecies(c echo.Context, raw json.RawMessage) (any, error) {
	var args addSpeciesArgs
	if err := decodeArgs(c, raw, &args); err != nil {
		return nil, err
	}

	return h.catalog.AddSpecies(c.Request().Context(), ctxSession(c), ports.AddSpeciesInput{
		Name:                 args.Name,
		WateringIntervalDays: args.WateringInterval,
		ImageURL:             args.ImageURL,
		Description:          args.Description,
		FunFact:              args.FunFact,
		Fertilizer:           args.Fertilizer,
		LightLevel:           args.LightLevel,
	})
}

func (h *OperationHandler) deleteSpecies(c echo.Context, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArgs(c, raw, &args); err != nil {
		return nil, err
	}
	return h.catalog.DeleteSpecies(c.Request().Context(), ctxSession(c), args.ID)
}

// ── Garden ────────────────────────────────────────────────────────────────────

type addPlantArgs struct {
	Name      string `json:"name"`
	SpeciesID string `json:"speciesId" validate:"required"`
}

// PlantView is the response shape of a plant with its species resolved.
type PlantView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SpeciesID   string          `json:"speciesId"`
	LastWatered time.Time       `json:"lastWatered"`
	Species     *domain.Species `json:"species"`
}

// speciesMemo resolves Plant.species once per species id within a request.
type speciesMemo struct {
	catalog ports.CatalogService
	seen    map[string]*domain.Species
}

func newSpeciesMemo(catalog ports.CatalogService) *speciesMemo {
	return &speciesMemo{catalog: catalog, seen: make(map[string]*domain.Species)}
}

func (m *speciesMemo) view(ctx context.Context, p domain.Plant) PlantView {
	s, ok := m.seen[p.SpeciesID]
	if !ok {
		s = m.catalog.SpeciesOf(ctx, p)
		m.seen[p.SpeciesID] = s
	}
	return PlantView{
		ID:          p.ID,
		Name:        p.Name,
		SpeciesID:   p.SpeciesID,
		LastWatered: p.LastWateredAt,
		Species:     s,
	}
}

func (h *OperationHandler) getMyPlants(c echo.Context, raw json.RawMessage) (any, error) {
	if err := decodeArgs(c, raw, &noArgs{}); err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	plants, err := h.garden.MyPlants(ctx, ctxSession(c))
	if err != nil {
		return nil, err
	}

	memo := newSpeciesMemo(h.catalog)
	views := make([]PlantView, 0, len(plants))
	for _, p := range plants {
		views = append(views, memo.view(ctx, p))
	}
	return views, nil
}

func (h *OperationHandler) addPlant(c echo.Context, raw json.RawMessage) (any, error) {
	var args addPlantArgs
	if err := decodeArgs(c, raw, &args); err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	p, err := h.garden.AddPlant(ctx, ctxSession(c), args.Name, args.SpeciesID)
	if err != nil {
		return nil, err
	}
	return newSpeciesMemo(h.catalog).view(ctx, *p), nil
}

func (h *OperationHandler) waterPlant(c echo.Context, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArgs(c, raw, &args); err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	p, err := h.garden.WaterPlant(ctx, ctxSession(c), args.ID)
	if err != nil {
		return nil, err
	}
	return newSpeciesMemo(h.catalog).view(ctx, *p), nil
}

func (h *OperationHandler) deletePlant(c echo.Context, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArgs(c, raw, &args); err != nil {
		return nil, err
	}
	return h.garden.DeletePlant(c.Request().Context(), ctxSession(c), args.ID)
}

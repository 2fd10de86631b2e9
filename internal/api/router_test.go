package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantpal/plantpal-api/internal/api/handler"
	"github.com/plantpal/plantpal-api/internal/core/service"
)

type envelope struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []handler.OperationError   `json:"errors"`
}

type client struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *client {
	t.Helper()
	store := newMemStore()
	species := memSpecies{store}
	plants := memPlants{store}
	tokens := service.NewTokenCodec("test-secret", service.DefaultTokenTTL)
	log := zerolog.Nop()

	e := NewEcho(Services{
		Auth:    service.NewAuthService(memUsers{store}, tokens, log),
		Catalog: service.NewCatalogService(species, plants, nil, log),
		Garden:  service.NewGardenService(plants, species, log),
	}, []string{"*"}, log)
	return &client{t: t, e: e}
}

func (cl *client) do(method, path, token, body string) *httptest.ResponseRecorder {
	cl.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	cl.e.ServeHTTP(rec, req)
	return rec
}

// op runs one operation and returns the raw result and the error code, if any.
func (cl *client) op(token, operation, args string) (json.RawMessage, string) {
	cl.t.Helper()
	body := `{"operation":"` + operation + `","arguments":` + args + `}`
	rec := cl.do(http.MethodPost, "/v1/operations", token, body)
	require.Equal(cl.t, http.StatusOK, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(cl.t, json.Unmarshal(rec.Body.Bytes(), &env))
	if len(env.Errors) > 0 {
		return env.Data[operation], env.Errors[0].Code
	}
	return env.Data[operation], ""
}

func (cl *client) auth(operation, username, password string) handler.AuthPayload {
	cl.t.Helper()
	raw, code := cl.op("", operation, `{"username":"`+username+`","password":"`+password+`"}`)
	require.Empty(cl.t, code)
	var p handler.AuthPayload
	require.NoError(cl.t, json.Unmarshal(raw, &p))
	return p
}

func (cl *client) id(raw json.RawMessage) string {
	cl.t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	require.NoError(cl.t, json.Unmarshal(raw, &v))
	require.NotEmpty(cl.t, v.ID)
	return v.ID
}

func TestRouter_GardenLifecycle(t *testing.T) {
	cl := newTestServer(t)

	// First account is ADMIN, later ones USER.
	alice := cl.auth("register", "alice", "pw-alice")
	require.Empty(t, alice.Error)
	assert.Equal(t, "ADMIN", alice.Role)
	bob := cl.auth("register", "bob", "pw-bob")
	assert.Equal(t, "USER", bob.Role)

	dup := cl.auth("register", "alice", "other")
	assert.Equal(t, "username already taken", dup.Error)
	assert.Empty(t, dup.Token)

	wrong := cl.auth("login", "bob", "nope")
	ghost := cl.auth("login", "ghost", "nope")
	assert.Equal(t, wrong, ghost)
	assert.NotEmpty(t, wrong.Error)

	bobLogin := cl.auth("login", "bob", "pw-bob")
	require.Empty(t, bobLogin.Error)
	bobToken := bobLogin.Token

	raw, code := cl.op("", "getSpecies", `{}`)
	assert.Empty(t, code)
	assert.JSONEq(t, `[]`, string(raw))

	// Only admins curate the catalog.
	_, code = cl.op(bobToken, "addSpecies", `{"name":"Fern"}`)
	assert.Equal(t, handler.CodeForbidden, code)
	raw, code = cl.op(alice.Token, "addSpecies", `{"name":"Fern","wateringInterval":4,"lightLevel":2}`)
	require.Empty(t, code)
	fernID := cl.id(raw)

	_, code = cl.op("", "addPlant", `{"name":"Fernando","speciesId":"`+fernID+`"}`)
	assert.Equal(t, handler.CodeUnauthenticated, code)
	_, code = cl.op(bobToken, "addPlant", `{"name":"Ghost","speciesId":"missing"}`)
	assert.Equal(t, handler.CodeSpeciesNotFound, code)

	raw, code = cl.op(bobToken, "addPlant", `{"name":"Fernando","speciesId":"`+fernID+`"}`)
	require.Empty(t, code)
	plantID := cl.id(raw)

	raw, _ = cl.op(bobToken, "getMyPlants", `{}`)
	var mine []handler.PlantView
	require.NoError(t, json.Unmarshal(raw, &mine))
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Species)
	assert.Equal(t, "Fern", mine[0].Species.Name)

	raw, _ = cl.op(alice.Token, "getMyPlants", `{}`)
	assert.JSONEq(t, `[]`, string(raw))
	raw, _ = cl.op("not-a-token", "getMyPlants", `{}`)
	assert.JSONEq(t, `[]`, string(raw))

	// Another user's plant is invisible to mutations.
	_, code = cl.op(alice.Token, "waterPlant", `{"id":"`+plantID+`"}`)
	assert.Equal(t, handler.CodePlantNotFound, code)
	raw, _ = cl.op(alice.Token, "deletePlant", `{"id":"`+plantID+`"}`)
	assert.Equal(t, "false", string(raw))

	raw, code = cl.op(bobToken, "waterPlant", `{"id":"`+plantID+`"}`)
	require.Empty(t, code)
	assert.Equal(t, plantID, cl.id(raw))

	_, code = cl.op(alice.Token, "deleteSpecies", `{"id":"`+fernID+`"}`)
	assert.Equal(t, handler.CodeReferencedByPlants, code)

	raw, _ = cl.op("", "deletePlant", `{"id":"`+plantID+`"}`)
	assert.Equal(t, "false", string(raw))
	raw, _ = cl.op(bobToken, "deletePlant", `{"id":"`+plantID+`"}`)
	assert.Equal(t, "true", string(raw))

	raw, code = cl.op(alice.Token, "deleteSpecies", `{"id":"`+fernID+`"}`)
	require.Empty(t, code)
	assert.Equal(t, "true", string(raw))
	raw, _ = cl.op("", "getSpecies", `{}`)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestRouter_MalformedRequestUsesEnvelope(t *testing.T) {
	cl := newTestServer(t)

	rec := cl.do(http.MethodPost, "/v1/operations", "", `{"operation":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Errors, 1)
	assert.Equal(t, handler.CodeBadRequest, env.Errors[0].Code)
	assert.Contains(t, env.Errors[0].Message, `unknown operation "nope"`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	rec := newTestServer(t).do(http.MethodGet, "/v2/nothing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "NOT_FOUND", env.Errors[0].Code)
}

func TestRouter_RequestIDIsULID(t *testing.T) {
	rec := newTestServer(t).do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 26)
}

func TestRouter_ObservabilityRoutes(t *testing.T) {
	cl := newTestServer(t)
	cl.do(http.MethodGet, "/health", "", "")

	rec := cl.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "plantpal_http_requests_total")

	rec = cl.do(http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"disabled"`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	cl := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/operations", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	cl.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

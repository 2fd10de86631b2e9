package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/plantpal/plantpal-api/docs"
	"github.com/plantpal/plantpal-api/internal/api/handler"
	"github.com/plantpal/plantpal-api/internal/api/middleware"
	"github.com/plantpal/plantpal-api/internal/core/ports"
	"github.com/plantpal/plantpal-api/internal/core/service"
	mongorepo "github.com/plantpal/plantpal-api/internal/infrastructure/db/mongo"
	rediscache "github.com/plantpal/plantpal-api/internal/infrastructure/db/redis"
	"github.com/plantpal/plantpal-api/internal/pkg/config"
)

// Services are the use cases the transport dispatches to, plus the
// dependency probes behind /health/ready.
type Services struct {
	Auth    ports.AuthService
	Catalog ports.CatalogService
	Garden  ports.GardenService
	Mongo   handler.Pinger
	Redis   handler.Pinger
}

// NewRouter wires repositories and services on top of db and the optional
// rdb, then builds the Echo instance.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	users := mongorepo.NewUserRepository(db)
	species := mongorepo.NewSpeciesRepository(db)
	plants := mongorepo.NewPlantRepository(db)

	var cache ports.SpeciesCache
	if rdb != nil {
		cache = rediscache.NewSpeciesCache(rdb, cfg.Redis.SpeciesTTL)
	}

	tokens := service.NewTokenCodec(cfg.JWTSecret, service.DefaultTokenTTL)

	return NewEcho(Services{
		Auth:    service.NewAuthService(users, tokens, log),
		Catalog: service.NewCatalogService(species, plants, cache, log),
		Garden:  service.NewGardenService(plants, species, log),
		Mongo:   handler.MongoPinger(db),
		Redis:   handler.RedisPinger(rdb),
	}, cfg.AllowedOrigins(), log)
}

// NewEcho builds the Echo instance with all routes registered.
func NewEcho(svc Services, allowOrigins []string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// Each router gets its own registry for HTTP metrics so building more
	// than one (tests) does not collide on the default registry.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "plantpal",
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operations ---
	ops := handler.NewOperationHandler(svc.Auth, svc.Catalog, svc.Garden, log)
	v1 := e.Group("/v1", middleware.Session(svc.Auth))
	v1.POST("/operations", ops.Execute)

	// --- Health probes (no auth required) ---
	health := handler.NewHealthHandler(svc.Mongo, svc.Redis)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/plantpal/plantpal-api/internal/api"
	"github.com/plantpal/plantpal-api/internal/infrastructure/db/mongo"
	"github.com/plantpal/plantpal-api/internal/infrastructure/db/redis"
	"github.com/plantpal/plantpal-api/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Connect to MongoDB (retrying with backoff), ensure indexes, optionally
connect the Redis species cache, and serve HTTP until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongo.ConnectWithRetry(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Retries:  cfg.Mongo.ConnectRetries,
	}, log)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	rdb := connectCache(ctx, cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	e := api.NewRouter(db, rdb, cfg, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// connectCache returns nil when Redis is not configured or not reachable;
// the catalog is then served straight from MongoDB.
func connectCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) *goredis.Client {
	rcfg := redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	if !rcfg.Enabled() {
		log.Info().Msg("species cache disabled")
		return nil
	}

	rdb, err := redis.Connect(ctx, rcfg)
	if err != nil {
		log.Warn().Err(err).Msg("species cache unavailable, continuing without it")
		return nil
	}
	log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.SpeciesTTL).Msg("species cache connected")
	return rdb
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plantpal/plantpal-api/internal/infrastructure/db/mongo"
)

// NewEnsureIndexesCmd creates the ensure-indexes subcommand.
func NewEnsureIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}

			client, db, err := mongo.ConnectWithRetry(cmd.Context(), mongo.Config{
				URI:      cfg.Mongo.URI,
				Database: cfg.Mongo.Database,
				Retries:  cfg.Mongo.ConnectRetries,
			}, log)
			if err != nil {
				return fmt.Errorf("connect mongo: %w", err)
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			if err := mongo.EnsureIndexes(cmd.Context(), db); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
			cmd.Println("indexes ensured on", cfg.Mongo.Database)
			return nil
		},
	}
}

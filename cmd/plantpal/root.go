package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/plantpal/plantpal-api/internal/pkg/config"
	"github.com/plantpal/plantpal-api/pkg/logger"
)

const serviceName = "plantpal-api"

// NewRootCmd creates the root command for the PlantPal CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plantpal",
		Short: "PlantPal - houseplant tracking API",
		Long: `PlantPal serves the houseplant tracking API: accounts, the species
catalog, and each user's own plants. Configuration is read from the environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewEnsureIndexesCmd())

	return cmd
}

// bootstrap loads configuration and initialises the process logger.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Version: version,
	})
	return cfg, log, nil
}

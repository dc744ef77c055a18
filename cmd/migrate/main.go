package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/migrate"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
	"github.com/zatekoja/notification-orchestrator/migrations"
	"github.com/zatekoja/notification-orchestrator/pkg/config"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("notification-migrate", cfg.Log.Env, cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Setup DB
	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgClient.Close()

	applied, err := migrate.Apply(ctx, pgClient.DB(), migrations.FS)
	if err != nil {
		log.Error().Err(err).Strs("applied", applied).Msg("Migration failed")
		pgClient.Close()
		os.Exit(1)
	}

	if len(applied) == 0 {
		log.Info().Msg("Schema is up to date")
		return
	}
	log.Info().Strs("applied", applied).Msg("Migrations complete")
}

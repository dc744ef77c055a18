// Package bootstrap assembles the preference store stack shared by the
// binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/notification-orchestrator/internal/adapters/cache"
	"github.com/zatekoja/notification-orchestrator/internal/adapters/database"
	"github.com/zatekoja/notification-orchestrator/internal/adapters/kv"
	"github.com/zatekoja/notification-orchestrator/internal/adapters/memory"
	"github.com/zatekoja/notification-orchestrator/internal/domain/providers"
	"github.com/zatekoja/notification-orchestrator/internal/domain/repositories"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/clients/postgres"
	redisclient "github.com/zatekoja/notification-orchestrator/internal/infrastructure/clients/redis"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
	"github.com/zatekoja/notification-orchestrator/pkg/config"
)

// Store is the preference repository selected by configuration together
// with the connections it owns
type Store struct {
	Repository repositories.PreferenceRepository
	// Cache is nil when Redis is unavailable or caching is disabled
	Cache providers.CacheProvider
	// Redis is nil when no Redis connection could be made
	Redis *redisclient.Client

	closers []func() error
}

// OpenStore connects the configured backend. Redis is optional for the
// postgres and memory backends; it only adds caching.
func OpenStore(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*Store, error) {
	store := &Store{}

	redisClient, redisErr := redisclient.NewClient(ctx, &cfg.Redis)
	if redisErr == nil {
		store.Redis = redisClient
		store.closers = append(store.closers, redisClient.Close)
	}

	var base repositories.PreferenceRepository
	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize PostgreSQL client: %w", err)
		}
		store.closers = append(store.closers, pgClient.Close)
		base = database.NewPreferenceAdapter(pgClient, cfg.Storage.Table)

	case config.StorageBackendRedis:
		if redisErr != nil {
			return nil, fmt.Errorf("redis storage backend selected: %w", redisErr)
		}
		base = kv.NewRedisPreferenceStore(redisClient, cfg.Storage.KeyPrefix)

	case config.StorageBackendMemory:
		base = memory.NewPreferenceStore()

	default:
		_ = store.Close()
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}

	if redisErr != nil {
		log.Warn().Err(redisErr).Msg("Redis unavailable, running without preference cache")
	}

	repo := database.NewInstrumentedPreferenceAdapter(base, cfg.Storage.Backend, metrics)

	// caching a Redis-backed store in Redis gains nothing
	if store.Redis != nil && cfg.Storage.CacheEnabled && cfg.Storage.Backend != config.StorageBackendRedis {
		store.Cache = cache.NewRedisAdapter(store.Redis)
		repo = database.NewCachedPreferenceAdapter(repo, store.Cache, cfg.Storage.CacheTTLSeconds, metrics)
		log.Info().Int("ttl_seconds", cfg.Storage.CacheTTLSeconds).Msg("Preference store wrapped with caching layer")
	}

	store.Repository = repo
	log.Info().Str("backend", cfg.Storage.Backend).Msg("Preference store ready")
	return store, nil
}

// Close releases every connection the store opened
func (s *Store) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}

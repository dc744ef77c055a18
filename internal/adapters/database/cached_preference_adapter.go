package database

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/providers"
	"github.com/zatekoja/notification-orchestrator/internal/domain/repositories"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
)

// DefaultPreferenceCacheTTL is used when no TTL is configured (seconds)
const DefaultPreferenceCacheTTL = 300

// CachedPreferenceAdapter wraps a PreferenceRepository with a read-through
// cache. Writes go to the backing store first and then drop the cached copy.
type CachedPreferenceAdapter struct {
	adapter repositories.PreferenceRepository
	cache   providers.CacheProvider
	ttl     int
	metrics *observability.Metrics
}

// NewCachedPreferenceAdapter creates a new cached preference adapter
func NewCachedPreferenceAdapter(adapter repositories.PreferenceRepository, cache providers.CacheProvider, ttlSeconds int, metrics *observability.Metrics) *CachedPreferenceAdapter {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultPreferenceCacheTTL
	}
	return &CachedPreferenceAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttlSeconds,
		metrics: metrics,
	}
}

// Get retrieves a record, serving from cache when possible. Absent records
// are not cached.
func (a *CachedPreferenceAdapter) Get(ctx context.Context, userID string) (*entities.PreferencesRecord, error) {
	cacheKey := providers.PreferenceCacheKey(userID)

	cached, err := a.cache.Get(ctx, cacheKey)
	switch {
	case err == nil:
		var record entities.PreferencesRecord
		if err := json.Unmarshal(cached, &record); err == nil {
			observability.RecordCacheHit(ctx, a.metrics)
			return &record, nil
		}
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to decode cached preferences")
	case !errors.Is(err, providers.ErrCacheMiss):
		log.Warn().Err(err).Str("user_id", userID).Msg("Preference cache read failed")
	}
	observability.RecordCacheMiss(ctx, a.metrics)

	record, err := a.adapter.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(record); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, a.ttl); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Failed to cache preferences")
		}
	}

	return record, nil
}

// Put writes through to the backing store and drops the cached copy
func (a *CachedPreferenceAdapter) Put(ctx context.Context, record *entities.PreferencesRecord) error {
	if err := a.adapter.Put(ctx, record); err != nil {
		return err
	}
	if record != nil {
		a.Invalidate(ctx, record.UserID)
	}
	return nil
}

// Delete removes the record from the backing store and the cache
func (a *CachedPreferenceAdapter) Delete(ctx context.Context, userID string) error {
	if err := a.adapter.Delete(ctx, userID); err != nil {
		return err
	}
	a.Invalidate(ctx, userID)
	return nil
}

// Ping checks the backing store
func (a *CachedPreferenceAdapter) Ping(ctx context.Context) error {
	return a.adapter.Ping(ctx)
}

// Invalidate drops the cached copy of a user's record
func (a *CachedPreferenceAdapter) Invalidate(ctx context.Context, userID string) {
	if err := a.cache.Delete(ctx, providers.PreferenceCacheKey(userID)); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to invalidate cached preferences")
	}
}

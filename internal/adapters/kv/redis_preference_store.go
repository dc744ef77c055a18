package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/repositories"
	redisclient "github.com/zatekoja/notification-orchestrator/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

// DefaultKeyPrefix namespaces preference records in a shared Redis
const DefaultKeyPrefix = "prefs:"

// RedisPreferenceStore keeps each user's record as a JSON document under
// prefix+userID, with no expiry.
type RedisPreferenceStore struct {
	client *redisclient.Client
	prefix string
}

// NewRedisPreferenceStore creates a Redis-backed preference repository
func NewRedisPreferenceStore(client *redisclient.Client, prefix string) repositories.PreferenceRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisPreferenceStore{client: client, prefix: prefix}
}

func (s *RedisPreferenceStore) key(userID string) string {
	return s.prefix + userID
}

// Get retrieves the record for a user
func (s *RedisPreferenceStore) Get(ctx context.Context, userID string) (*entities.PreferencesRecord, error) {
	data, err := s.client.Client().Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("preferences for user %s not found", userID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get preferences", err)
	}

	var record entities.PreferencesRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, apperrors.NewInternalError("failed to decode stored preferences", err)
	}
	return &record, nil
}

// Put stores the record, overwriting any previous one
func (s *RedisPreferenceStore) Put(ctx context.Context, record *entities.PreferencesRecord) error {
	if record == nil {
		return apperrors.NewInternalError("preferences record is nil", fmt.Errorf("preferences record is nil"))
	}

	stored := record.Clone()
	stored.Normalize()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return apperrors.NewInternalError("failed to encode preferences", err)
	}
	if err := s.client.Client().Set(ctx, s.key(stored.UserID), data, 0).Err(); err != nil {
		return apperrors.NewInternalError("failed to store preferences", err)
	}
	return nil
}

// Delete removes the record for a user
func (s *RedisPreferenceStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Client().Del(ctx, s.key(userID)).Err(); err != nil {
		return apperrors.NewInternalError("failed to delete preferences", err)
	}
	return nil
}

// Ping verifies Redis is reachable
func (s *RedisPreferenceStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

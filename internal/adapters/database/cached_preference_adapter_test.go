package database

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/notification-orchestrator/internal/adapters/memory"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/providers"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

type mockCacheProvider struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]int
	deleted []string
}

func newMockCacheProvider() *mockCacheProvider {
	return &mockCacheProvider{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return nil, providers.ErrCacheMiss
}

func (m *mockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = expirationSeconds
	return nil
}

func (m *mockCacheProvider) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

type countingStore struct {
	*memory.PreferenceStore
	gets int
}

func (s *countingStore) Get(ctx context.Context, userID string) (*entities.PreferencesRecord, error) {
	s.gets++
	return s.PreferenceStore.Get(ctx, userID)
}

func samplePreferences(userID string, channels ...entities.Channel) *entities.PreferencesRecord {
	return entities.NewPreferencesRecord(userID, map[string]entities.EventTypePreference{
		"order_shipped": {Enabled: true, Channels: channels},
	}, nil)
}

func TestCachedPreferenceAdapter_ReadThrough(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{PreferenceStore: memory.NewPreferenceStore()}
	cache := newMockCacheProvider()
	adapter := NewCachedPreferenceAdapter(store, cache, 60, nil)

	require.NoError(t, store.PreferenceStore.Put(ctx, samplePreferences("usr_1", entities.ChannelEmail)))

	first, err := adapter.Get(ctx, "usr_1")
	require.NoError(t, err)
	second, err := adapter.Get(ctx, "usr_1")
	require.NoError(t, err)

	assert.Equal(t, 1, store.gets)
	assert.Equal(t, first.Preferences, second.Preferences)
	assert.Equal(t, 60, cache.ttls[providers.PreferenceCacheKey("usr_1")])
}

func TestCachedPreferenceAdapter_MissingNotCached(t *testing.T) {
	ctx := context.Background()
	cache := newMockCacheProvider()
	adapter := NewCachedPreferenceAdapter(memory.NewPreferenceStore(), cache, 0, nil)

	_, err := adapter.Get(ctx, "usr_missing")
	assert.True(t, apperrors.IsNotFound(err))

	exists, err := cache.Exists(ctx, providers.PreferenceCacheKey("usr_missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCachedPreferenceAdapter_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := newMockCacheProvider()
	adapter := NewCachedPreferenceAdapter(memory.NewPreferenceStore(), cache, 60, nil)

	require.NoError(t, adapter.Put(ctx, samplePreferences("usr_1", entities.ChannelEmail)))
	_, err := adapter.Get(ctx, "usr_1")
	require.NoError(t, err)

	require.NoError(t, adapter.Put(ctx, samplePreferences("usr_1", entities.ChannelPush)))
	got, err := adapter.Get(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, []entities.Channel{entities.ChannelPush}, got.Preferences["order_shipped"].Channels)

	require.NoError(t, adapter.Delete(ctx, "usr_1"))
	_, err = adapter.Get(ctx, "usr_1")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, cache.deleted, providers.PreferenceCacheKey("usr_1"))
}

func TestInstrumentedPreferenceAdapter_PassesThrough(t *testing.T) {
	ctx := context.Background()
	repo := NewInstrumentedPreferenceAdapter(memory.NewPreferenceStore(), "memory", nil)

	require.NoError(t, repo.Put(ctx, samplePreferences("usr_1", entities.ChannelSMS)))
	got, err := repo.Get(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "usr_1", got.UserID)

	require.NoError(t, repo.Delete(ctx, "usr_1"))
	_, err = repo.Get(ctx, "usr_1")
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, repo.Ping(ctx))
}

package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

func TestPreferenceStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewPreferenceStore()

	_, err := store.Get(ctx, "usr_1")
	assert.True(t, apperrors.IsNotFound(err))

	record := entities.NewPreferencesRecord("usr_1", map[string]entities.EventTypePreference{
		"order_shipped": {Enabled: true, Channels: []entities.Channel{entities.ChannelSMS}},
	}, nil)
	require.NoError(t, store.Put(ctx, record))
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, record.Preferences, got.Preferences)

	require.NoError(t, store.Delete(ctx, "usr_1"))
	require.NoError(t, store.Delete(ctx, "usr_1"))
	assert.Equal(t, 0, store.Len())
}

func TestPreferenceStore_CopiesRecords(t *testing.T) {
	ctx := context.Background()
	store := NewPreferenceStore()

	record := entities.NewPreferencesRecord("usr_1", map[string]entities.EventTypePreference{
		"order_shipped": {Enabled: true, Channels: []entities.Channel{entities.ChannelSMS}},
	}, nil)
	require.NoError(t, store.Put(ctx, record))

	record.Preferences["order_shipped"].Channels[0] = entities.ChannelPush

	got, err := store.Get(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, entities.ChannelSMS, got.Preferences["order_shipped"].Channels[0])

	got.Preferences["other"] = entities.EventTypePreference{}
	again, err := store.Get(ctx, "usr_1")
	require.NoError(t, err)
	assert.NotContains(t, again.Preferences, "other")
}

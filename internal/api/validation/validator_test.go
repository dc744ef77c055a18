package validation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

var defaultChannels = []string{"email", "sms", "push"}

func decode[T any](t *testing.T, body string) *T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return &out
}

func TestValidateEvent(t *testing.T) {
	v := New(defaultChannels)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid event",
			body: `{"eventId":"evt_1","userId":"usr_1","eventType":"item_shipped","timestamp":"2024-01-01T10:00:00Z","payload":{"orderId":"o1"}}`,
		},
		{
			name: "fractional seconds and offset",
			body: `{"eventId":"evt_1","userId":"usr_1","eventType":"item_shipped","timestamp":"2024-01-01T10:00:00.123+01:00"}`,
		},
		{
			name:    "missing userId",
			body:    `{"eventId":"evt_1","eventType":"item_shipped","timestamp":"2024-01-01T10:00:00Z"}`,
			wantErr: "userId is required",
		},
		{
			name:    "bad timestamp",
			body:    `{"eventId":"evt_1","userId":"usr_1","eventType":"item_shipped","timestamp":"yesterday"}`,
			wantErr: "timestamp must be an ISO 8601 timestamp",
		},
		{
			name:    "payload must be an object",
			body:    `{"eventId":"evt_1","userId":"usr_1","eventType":"item_shipped","timestamp":"2024-01-01T10:00:00Z","payload":[1,2]}`,
			wantErr: "payload must be an object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEvent(decode[EventRequest](t, tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEventRequest_ToEntity(t *testing.T) {
	req := decode[EventRequest](t, `{"eventId":"evt_1","userId":"usr_1","eventType":"item_shipped","timestamp":"2024-01-01T11:00:00+01:00"}`)

	event, err := req.ToEntity()
	require.NoError(t, err)
	assert.True(t, event.Timestamp.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "item_shipped", event.EventType)
}

func TestValidatePreferences(t *testing.T) {
	v := New(defaultChannels)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid full request",
			body: `{"preferences":{"item_shipped":{"enabled":true,"channels":["email","push"]}},
				"dndWindows":[{"dayOfWeek":"Monday","startTime":"22:00","endTime":"7:00"},{"dayOfWeek":["Saturday","Sunday"],"isFullDay":true}]}`,
		},
		{
			name: "empty body is a valid replacement",
			body: `{}`,
		},
		{
			name: "empty channel list allowed",
			body: `{"preferences":{"item_shipped":{"enabled":true,"channels":[]}}}`,
		},
		{
			name:    "unknown channel",
			body:    `{"preferences":{"item_shipped":{"enabled":true,"channels":["pigeon"]}}}`,
			wantErr: "must be one of [email, sms, push]",
		},
		{
			name:    "missing enabled",
			body:    `{"preferences":{"item_shipped":{"channels":["email"]}}}`,
			wantErr: "enabled is required",
		},
		{
			name:    "missing channels",
			body:    `{"preferences":{"item_shipped":{"enabled":false}}}`,
			wantErr: "channels is required",
		},
		{
			name:    "lowercase day rejected",
			body:    `{"dndWindows":[{"dayOfWeek":"monday","isFullDay":true}]}`,
			wantErr: "must be one of [Monday, Tuesday",
		},
		{
			name:    "bad clock time",
			body:    `{"dndWindows":[{"dayOfWeek":"Monday","startTime":"24:00","endTime":"07:00"}]}`,
			wantErr: "must be a time of day in HH:MM form",
		},
		{
			name:    "full day with times",
			body:    `{"dndWindows":[{"dayOfWeek":"Monday","isFullDay":true,"startTime":"09:00","endTime":"10:00"}]}`,
			wantErr: "isFullDay cannot be true",
		},
		{
			name:    "range without end",
			body:    `{"dndWindows":[{"dayOfWeek":"Monday","startTime":"09:00"}]}`,
			wantErr: "endTime is required unless isFullDay is true",
		},
		{
			name:    "missing dayOfWeek",
			body:    `{"dndWindows":[{"isFullDay":true}]}`,
			wantErr: "dayOfWeek is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePreferences(decode[PreferencesRequest](t, tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePreferences_ConfiguredChannels(t *testing.T) {
	v := New([]string{"email", "slack"})

	ok := decode[PreferencesRequest](t, `{"preferences":{"a":{"enabled":true,"channels":["slack"]}}}`)
	assert.NoError(t, v.ValidatePreferences(ok))

	rejected := decode[PreferencesRequest](t, `{"preferences":{"a":{"enabled":true,"channels":["sms"]}}}`)
	assert.Error(t, v.ValidatePreferences(rejected))
}

func TestPreferencesRequest_ToRecord(t *testing.T) {
	req := decode[PreferencesRequest](t, `{"preferences":{"item_shipped":{"enabled":true,"channels":["email"]}},
		"dndWindows":[{"dayOfWeek":["Monday","Friday"],"startTime":"22:00","endTime":"02:00"}]}`)

	record, err := req.ToRecord("usr_1")
	require.NoError(t, err)

	assert.Equal(t, "usr_1", record.UserID)
	assert.Equal(t, []entities.Channel{entities.ChannelEmail}, record.Preferences["item_shipped"].Channels)
	require.Len(t, record.DndWindows, 1)
	window := record.DndWindows[0]
	assert.True(t, window.Days.Contains(time.Monday))
	assert.True(t, window.Days.Contains(time.Friday))
	assert.Equal(t, entities.ClockTime{Hour: 22}, window.Start)
	assert.Equal(t, entities.ClockTime{Hour: 2}, window.End)
	assert.True(t, window.Wraps())
}

func TestValidateUpdate(t *testing.T) {
	v := New(defaultChannels)

	empty := decode[PreferencesUpdateRequest](t, `{}`)
	err := v.ValidateUpdate(empty)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "at least one of preferences or dndWindows")

	onlyDnd := decode[PreferencesUpdateRequest](t, `{"dndWindows":[]}`)
	assert.NoError(t, v.ValidateUpdate(onlyDnd))

	badWindow := decode[PreferencesUpdateRequest](t, `{"dndWindows":[{"dayOfWeek":"Monday"}]}`)
	err = v.ValidateUpdate(badWindow)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "dndWindows[0].startTime is required unless isFullDay is true")

	partial := decode[PreferencesUpdateRequest](t, `{"preferences":{"item_shipped":{"enabled":false}}}`)
	assert.Error(t, v.ValidateUpdate(partial))
}

func TestPreferencesUpdateRequest_ToUpdate(t *testing.T) {
	req := decode[PreferencesUpdateRequest](t, `{"preferences":{"item_shipped":{"enabled":false,"channels":[]}},"dndWindows":[]}`)

	update, err := req.ToUpdate()
	require.NoError(t, err)

	change := update.Preferences["item_shipped"]
	require.NotNil(t, change.Enabled)
	assert.False(t, *change.Enabled)
	assert.True(t, change.ChannelsSet)
	assert.Empty(t, change.Channels)
	require.NotNil(t, update.DndWindows)
	assert.Empty(t, *update.DndWindows)

	noDnd := decode[PreferencesUpdateRequest](t, `{"preferences":{}}`)
	update, err = noDnd.ToUpdate()
	require.NoError(t, err)
	assert.Nil(t, update.DndWindows)
}

func TestWeekdayNames_RejectsOtherShapes(t *testing.T) {
	var req DndWindowRequest
	err := json.Unmarshal([]byte(`{"dayOfWeek":3,"isFullDay":true}`), &req)
	assert.Error(t, err)
}

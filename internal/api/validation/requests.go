package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

// EventRequest is the body of POST /events
type EventRequest struct {
	EventID   string          `json:"eventId" validate:"required"`
	UserID    string          `json:"userId" validate:"required"`
	EventType string          `json:"eventType" validate:"required"`
	Timestamp string          `json:"timestamp" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (r *EventRequest) payloadIsObject() bool {
	payload := bytes.TrimSpace(r.Payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return true
	}
	return payload[0] == '{'
}

// ToEntity converts a validated request into an Event
func (r *EventRequest) ToEntity() (*entities.Event, error) {
	ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("timestamp %q is not an ISO 8601 timestamp", r.Timestamp))
	}
	return &entities.Event{
		EventID:   r.EventID,
		UserID:    r.UserID,
		EventType: r.EventType,
		Timestamp: ts,
		Payload:   r.Payload,
	}, nil
}

// WeekdayNames accepts either a single weekday name or a list of them
type WeekdayNames []string

// UnmarshalJSON decodes "Monday" or ["Monday", "Friday"]
func (w *WeekdayNames) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return fmt.Errorf("dayOfWeek must be a weekday name or a list of weekday names")
		}
		*w = names
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*w = nil
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("dayOfWeek must be a weekday name or a list of weekday names")
	}
	*w = WeekdayNames{name}
	return nil
}

// DndWindowRequest is one Do-Not-Disturb window as sent by clients
type DndWindowRequest struct {
	DayOfWeek WeekdayNames `json:"dayOfWeek" validate:"required,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime *string      `json:"startTime,omitempty" validate:"omitempty,hhmm"`
	EndTime   *string      `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	IsFullDay *bool        `json:"isFullDay,omitempty"`
}

// ToEntity converts a validated window
func (r DndWindowRequest) ToEntity() (entities.DndWindow, error) {
	days, _ := entities.ParseWeekdays(r.DayOfWeek)
	if r.IsFullDay != nil && *r.IsFullDay {
		return entities.FullDayWindow(days), nil
	}
	if r.StartTime == nil || r.EndTime == nil {
		return entities.DndWindow{}, apperrors.NewValidationError("startTime and endTime are required unless isFullDay is true")
	}
	start, err := entities.ParseClockTime(*r.StartTime)
	if err != nil {
		return entities.DndWindow{}, apperrors.NewValidationError(err.Error())
	}
	end, err := entities.ParseClockTime(*r.EndTime)
	if err != nil {
		return entities.DndWindow{}, apperrors.NewValidationError(err.Error())
	}
	return entities.TimeRangeWindow(days, start, end), nil
}

// EventTypePreferenceRequest is the setting for one event type. Both fields
// are required on set and on update.
type EventTypePreferenceRequest struct {
	Enabled  *bool    `json:"enabled" validate:"required"`
	Channels []string `json:"channels" validate:"required,dive,channel"`
}

// PreferencesRequest is the body of POST /preferences/{userId}
type PreferencesRequest struct {
	Preferences map[string]EventTypePreferenceRequest `json:"preferences,omitempty" validate:"omitempty,dive"`
	DndWindows  []DndWindowRequest                    `json:"dndWindows,omitempty" validate:"omitempty,dive"`
}

// ToRecord converts a validated request into a full record for userID
func (r *PreferencesRequest) ToRecord(userID string) (*entities.PreferencesRecord, error) {
	preferences := make(map[string]entities.EventTypePreference, len(r.Preferences))
	for eventType, pref := range r.Preferences {
		preferences[eventType] = pref.toEntity()
	}
	windows, err := windowsToEntities(r.DndWindows)
	if err != nil {
		return nil, err
	}
	return entities.NewPreferencesRecord(userID, preferences, windows), nil
}

// PreferencesUpdateRequest is the body of PUT /preferences/{userId}
type PreferencesUpdateRequest struct {
	Preferences map[string]EventTypePreferenceRequest `json:"preferences,omitempty" validate:"omitempty,dive"`
	DndWindows  *[]DndWindowRequest                   `json:"dndWindows,omitempty"`
}

// ToUpdate converts a validated request into a partial update
func (r *PreferencesUpdateRequest) ToUpdate() (*entities.PreferencesUpdate, error) {
	update := &entities.PreferencesUpdate{}
	if r.Preferences != nil {
		update.Preferences = make(map[string]entities.EventTypePreferenceUpdate, len(r.Preferences))
		for eventType, pref := range r.Preferences {
			update.Preferences[eventType] = pref.toUpdate()
		}
	}
	if r.DndWindows != nil {
		windows, err := windowsToEntities(*r.DndWindows)
		if err != nil {
			return nil, err
		}
		update.DndWindows = &windows
	}
	return update, nil
}

func (r EventTypePreferenceRequest) toEntity() entities.EventTypePreference {
	pref := entities.EventTypePreference{Channels: toChannels(r.Channels)}
	if r.Enabled != nil {
		pref.Enabled = *r.Enabled
	}
	return pref
}

func (r EventTypePreferenceRequest) toUpdate() entities.EventTypePreferenceUpdate {
	update := entities.EventTypePreferenceUpdate{Enabled: r.Enabled}
	if r.Channels != nil {
		update.Channels = toChannels(r.Channels)
		update.ChannelsSet = true
	}
	return update
}

func toChannels(names []string) []entities.Channel {
	channels := make([]entities.Channel, 0, len(names))
	for _, name := range names {
		channels = append(channels, entities.Channel(name))
	}
	return channels
}

func windowsToEntities(requests []DndWindowRequest) ([]entities.DndWindow, error) {
	windows := make([]entities.DndWindow, 0, len(requests))
	for i, req := range requests {
		window, err := req.ToEntity()
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("dndWindows[%d]: %v", i, err))
		}
		windows = append(windows, window)
	}
	return windows, nil
}

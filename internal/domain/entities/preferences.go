package entities

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

// Channel identifies a notification delivery medium
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// EventTypePreference is a user's setting for one event type
type EventTypePreference struct {
	Enabled  bool      `json:"enabled"`
	Channels []Channel `json:"channels"`
}

// Clone returns a deep copy
func (p EventTypePreference) Clone() EventTypePreference {
	return EventTypePreference{
		Enabled:  p.Enabled,
		Channels: cloneChannels(p.Channels),
	}
}

// PreferencesRecord is everything stored for one user
type PreferencesRecord struct {
	UserID      string                         `json:"userId"`
	Preferences map[string]EventTypePreference `json:"preferences"`
	DndWindows  []DndWindow                    `json:"dndWindows"`
	UpdatedAt   time.Time                      `json:"updatedAt,omitzero"`
}

// NewPreferencesRecord builds a normalized record for a full replacement
func NewPreferencesRecord(userID string, preferences map[string]EventTypePreference, windows []DndWindow) *PreferencesRecord {
	record := &PreferencesRecord{
		UserID:      userID,
		Preferences: preferences,
		DndWindows:  windows,
	}
	record.Normalize()
	return record
}

// Normalize replaces nil collections with empty ones so stored records
// always carry both fields.
func (r *PreferencesRecord) Normalize() {
	if r.Preferences == nil {
		r.Preferences = map[string]EventTypePreference{}
	}
	if r.DndWindows == nil {
		r.DndWindows = []DndWindow{}
	}
	for eventType, pref := range r.Preferences {
		if pref.Channels == nil {
			pref.Channels = []Channel{}
			r.Preferences[eventType] = pref
		}
	}
}

// Clone returns a deep copy of the record
func (r *PreferencesRecord) Clone() *PreferencesRecord {
	if r == nil {
		return nil
	}
	out := &PreferencesRecord{
		UserID:      r.UserID,
		Preferences: make(map[string]EventTypePreference, len(r.Preferences)),
		DndWindows:  append([]DndWindow{}, r.DndWindows...),
		UpdatedAt:   r.UpdatedAt,
	}
	for eventType, pref := range r.Preferences {
		out.Preferences[eventType] = pref.Clone()
	}
	return out
}

// Validate checks that the record can be stored
func (r *PreferencesRecord) Validate() error {
	if r == nil {
		return apperrors.NewValidationError("preferences record is required")
	}
	if r.UserID == "" {
		return apperrors.NewValidationError("userId is required")
	}
	for i, window := range r.DndWindows {
		if err := window.Validate(); err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("dndWindows[%d]: %s", i, err.Error()))
		}
	}
	return nil
}

// UnmarshalJSON normalizes records read back from storage
func (r *PreferencesRecord) UnmarshalJSON(data []byte) error {
	type plain PreferencesRecord
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = PreferencesRecord(decoded)
	r.Normalize()
	return nil
}

// EventTypePreferenceUpdate carries the fields of an event-type preference
// that an update sets. Nil fields keep their existing value.
type EventTypePreferenceUpdate struct {
	Enabled  *bool
	Channels []Channel
	// ChannelsSet distinguishes an explicit empty channel list from an
	// omitted one.
	ChannelsSet bool
}

// PreferencesUpdate is a partial update of a PreferencesRecord. A nil
// DndWindows leaves the windows unchanged; a non-nil empty slice clears them.
type PreferencesUpdate struct {
	Preferences map[string]EventTypePreferenceUpdate
	DndWindows  *[]DndWindow
}

// IsEmpty reports whether the update sets nothing
func (u *PreferencesUpdate) IsEmpty() bool {
	return u == nil || (len(u.Preferences) == 0 && u.DndWindows == nil)
}

func cloneChannels(channels []Channel) []Channel {
	if channels == nil {
		return nil
	}
	return append([]Channel{}, channels...)
}

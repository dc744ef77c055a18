package entities

import (
	"time"

	"github.com/google/uuid"
)

// PreferenceChangeType represents what happened to a user's preferences
type PreferenceChangeType string

const (
	PreferenceChangeReplaced PreferenceChangeType = "replaced"
	PreferenceChangeMerged   PreferenceChangeType = "merged"
	PreferenceChangeDeleted  PreferenceChangeType = "deleted"
)

// PreferenceChangedEvent is broadcast after a user's preferences are written
// so other instances can drop cached copies.
type PreferenceChangedEvent struct {
	ID         string               `json:"id"`
	UserID     string               `json:"user_id"`
	ChangeType PreferenceChangeType `json:"change_type"`
	Origin     string               `json:"origin,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
}

// NewPreferenceChangedEvent creates a new change event
func NewPreferenceChangedEvent(userID string, changeType PreferenceChangeType, origin string) *PreferenceChangedEvent {
	return &PreferenceChangedEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		ChangeType: changeType,
		Origin:     origin,
		Timestamp:  time.Now().UTC(),
	}
}

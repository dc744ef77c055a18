package entities

import (
	"encoding/json"
	"time"
)

// Event is an occurrence for a user that may warrant a notification
type Event struct {
	EventID   string          `json:"eventId"`
	UserID    string          `json:"userId"`
	EventType string          `json:"eventType"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// DecisionOutcome is the verdict of the decision engine
type DecisionOutcome string

const (
	DecisionProcess     DecisionOutcome = "PROCESS_NOTIFICATION"
	DecisionDoNotNotify DecisionOutcome = "DO_NOT_NOTIFY"
)

// DecisionReason explains a DO_NOT_NOTIFY verdict
type DecisionReason string

const (
	ReasonNoPreferencesFound   DecisionReason = "NO_PREFERENCES_FOUND"
	ReasonDndActive            DecisionReason = "DND_ACTIVE"
	ReasonPreferencesDisabled  DecisionReason = "PREFERENCES_DISABLED"
	ReasonNoChannelsConfigured DecisionReason = "NO_CHANNELS_CONFIGURED"
)

// Decision is the result of evaluating an event against a user's preferences
type Decision struct {
	Decision DecisionOutcome `json:"decision"`
	EventID  string          `json:"eventId"`
	UserID   string          `json:"userId"`
	Reason   DecisionReason  `json:"reason,omitempty"`
	Channels []Channel       `json:"channels,omitempty"`
}

// ShouldNotify reports whether the decision is to process the notification
func (d *Decision) ShouldNotify() bool {
	return d.Decision == DecisionProcess
}

// Suppress builds a DO_NOT_NOTIFY decision for the event
func Suppress(event *Event, reason DecisionReason) *Decision {
	return &Decision{
		Decision: DecisionDoNotNotify,
		EventID:  event.EventID,
		UserID:   event.UserID,
		Reason:   reason,
	}
}

// Process builds a PROCESS_NOTIFICATION decision carrying a copy of channels
func Process(event *Event, channels []Channel) *Decision {
	return &Decision{
		Decision: DecisionProcess,
		EventID:  event.EventID,
		UserID:   event.UserID,
		Channels: cloneChannels(channels),
	}
}

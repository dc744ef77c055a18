package providers

import (
	"context"

	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// preference change events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.PreferenceChangedEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.PreferenceChangedEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelPreferenceUpdates carries every preference change
const EventChannelPreferenceUpdates = "preferences:updates"

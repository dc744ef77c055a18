package repositories

import (
	"context"

	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
)

// PreferenceRepository is the key-value store of preference records, keyed
// by user ID.
type PreferenceRepository interface {
	// Get retrieves the record for a user. A missing record is reported as
	// an apperrors NotFound error.
	Get(ctx context.Context, userID string) (*entities.PreferencesRecord, error)

	// Put stores the record, unconditionally replacing any existing one
	Put(ctx context.Context, record *entities.PreferencesRecord) error

	// Delete removes the record for a user. Deleting a missing record is
	// not an error.
	Delete(ctx context.Context, userID string) error

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error
}

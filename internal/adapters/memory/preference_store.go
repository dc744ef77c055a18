package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/repositories"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

// PreferenceStore is a process-local preference repository. Records are
// copied on the way in and out so callers never share state with the store.
type PreferenceStore struct {
	mu      sync.RWMutex
	records map[string]*entities.PreferencesRecord
}

// NewPreferenceStore creates an empty in-memory store
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{records: make(map[string]*entities.PreferencesRecord)}
}

var _ repositories.PreferenceRepository = (*PreferenceStore)(nil)

// Get retrieves the record for a user
func (s *PreferenceStore) Get(ctx context.Context, userID string) (*entities.PreferencesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("preferences for user %s not found", userID))
	}
	return record.Clone(), nil
}

// Put stores a copy of the record
func (s *PreferenceStore) Put(ctx context.Context, record *entities.PreferencesRecord) error {
	if record == nil {
		return apperrors.NewInternalError("preferences record is nil", fmt.Errorf("preferences record is nil"))
	}

	stored := record.Clone()
	stored.Normalize()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.records[stored.UserID] = stored
	s.mu.Unlock()
	return nil
}

// Delete removes the record for a user
func (s *PreferenceStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.records, userID)
	s.mu.Unlock()
	return nil
}

// Ping always succeeds
func (s *PreferenceStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored records
func (s *PreferenceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

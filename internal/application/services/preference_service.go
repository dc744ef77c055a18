package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/providers"
	"github.com/zatekoja/notification-orchestrator/internal/domain/repositories"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// PreferenceService maintains user notification preferences
type PreferenceService struct {
	repo     repositories.PreferenceRepository
	eventBus providers.EventBus
	origin   string
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(repo repositories.PreferenceRepository, metrics *observability.Metrics) *PreferenceService {
	return &PreferenceService{
		repo:    repo,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetEventBus enables change events. origin identifies this instance so it
// can ignore its own events.
func (s *PreferenceService) SetEventBus(eventBus providers.EventBus, origin string) {
	s.eventBus = eventBus
	s.origin = origin
}

// Get returns the stored record for a user
func (s *PreferenceService) Get(ctx context.Context, userID string) (*entities.PreferencesRecord, error) {
	ctx, span := observability.StartSpan(ctx, "PreferenceService.Get")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("user.id", userID))

	record, err := s.repo.Get(ctx, userID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, storageError("failed to load preferences", err)
	}
	return record, nil
}

// Set replaces a user's record wholesale
func (s *PreferenceService) Set(ctx context.Context, record *entities.PreferencesRecord) (*entities.PreferencesRecord, error) {
	ctx, span := observability.StartSpan(ctx, "PreferenceService.Set")
	defer span.End()

	if err := record.Validate(); err != nil {
		return nil, err
	}
	observability.SetSpanAttributes(span, attribute.String("user.id", record.UserID))

	stored := record.Clone()
	stored.Normalize()
	stored.UpdatedAt = s.now()

	if err := s.repo.Put(ctx, stored); err != nil {
		observability.RecordError(span, err)
		return nil, storageError("failed to store preferences", err)
	}

	observability.RecordPreferenceWrite(ctx, s.metrics, string(entities.PreferenceChangeReplaced))
	s.publish(ctx, stored.UserID, entities.PreferenceChangeReplaced)
	return stored, nil
}

// Update merges a partial update into the existing record. A missing record
// is reported as not found and nothing is written.
func (s *PreferenceService) Update(ctx context.Context, userID string, update *entities.PreferencesUpdate) (*entities.PreferencesRecord, error) {
	ctx, span := observability.StartSpan(ctx, "PreferenceService.Update")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("user.id", userID))

	if update.IsEmpty() {
		return nil, apperrors.NewValidationError("update must set preferences or dndWindows")
	}

	existing, err := s.repo.Get(ctx, userID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, storageError("failed to load preferences", err)
	}

	merged := entities.Merge(existing, update)
	merged.UserID = userID
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	merged.UpdatedAt = s.now()

	if err := s.repo.Put(ctx, merged); err != nil {
		observability.RecordError(span, err)
		return nil, storageError("failed to store preferences", err)
	}

	observability.RecordPreferenceWrite(ctx, s.metrics, string(entities.PreferenceChangeMerged))
	s.publish(ctx, userID, entities.PreferenceChangeMerged)
	return merged, nil
}

// Delete removes a user's record. Deleting a missing record succeeds.
func (s *PreferenceService) Delete(ctx context.Context, userID string) error {
	ctx, span := observability.StartSpan(ctx, "PreferenceService.Delete")
	defer span.End()
	observability.SetSpanAttributes(span, attribute.String("user.id", userID))

	if err := s.repo.Delete(ctx, userID); err != nil {
		observability.RecordError(span, err)
		return storageError("failed to delete preferences", err)
	}

	observability.RecordPreferenceWrite(ctx, s.metrics, string(entities.PreferenceChangeDeleted))
	s.publish(ctx, userID, entities.PreferenceChangeDeleted)
	return nil
}

// Ping checks that the preference store is reachable
func (s *PreferenceService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return apperrors.NewExternalError("preference store unavailable", err)
	}
	return nil
}

func (s *PreferenceService) publish(ctx context.Context, userID string, change entities.PreferenceChangeType) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewPreferenceChangedEvent(userID, change, s.origin)
	if err := s.eventBus.Publish(ctx, providers.EventChannelPreferenceUpdates, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("user_id", userID).
			Str("change", string(change)).
			Msg("Failed to publish preference change")
	}
}

// storageError keeps typed application errors and wraps anything else as an
// internal failure.
func storageError(message string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewInternalError(message, fmt.Errorf("storage: %w", err))
}

package services

import (
	"context"

	"github.com/zatekoja/notification-orchestrator/internal/domain/dnd"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/repositories"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DecisionService decides whether an event should become a notification
type DecisionService struct {
	repo    repositories.PreferenceRepository
	metrics *observability.Metrics
}

// NewDecisionService creates a new decision service
func NewDecisionService(repo repositories.PreferenceRepository, metrics *observability.Metrics) *DecisionService {
	return &DecisionService{repo: repo, metrics: metrics}
}

// Evaluate loads the user's preferences once and applies, in order: record
// presence, DND windows, the event type setting and its channel list.
func (s *DecisionService) Evaluate(ctx context.Context, event *entities.Event) (*entities.Decision, error) {
	if event == nil {
		return nil, apperrors.NewValidationError("event is required")
	}

	ctx, span := observability.StartSpan(ctx, "DecisionService.Evaluate")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("event.id", event.EventID),
		attribute.String("event.type", event.EventType),
		attribute.String("user.id", event.UserID),
	)

	logger := observability.LoggerFromContext(ctx).With().
		Str("event_id", event.EventID).
		Str("user_id", event.UserID).
		Str("event_type", event.EventType).
		Logger()

	record, err := s.repo.Get(ctx, event.UserID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			observability.RecordError(span, err)
			logger.Error().Err(err).Msg("Failed to load preferences")
			return nil, apperrors.NewInternalError("failed to load preferences", err)
		}
		return s.finish(ctx, span, entities.Suppress(event, entities.ReasonNoPreferencesFound)), nil
	}

	if idx := dnd.ActiveWindow(event.Timestamp, record.DndWindows); idx >= 0 {
		logger.Debug().Int("dnd_window", idx).Msg("Event falls inside a DND window")
		observability.SetSpanAttributes(span, attribute.Int("dnd.window", idx))
		return s.finish(ctx, span, entities.Suppress(event, entities.ReasonDndActive)), nil
	}

	pref, ok := record.Preferences[event.EventType]
	if !ok || !pref.Enabled {
		return s.finish(ctx, span, entities.Suppress(event, entities.ReasonPreferencesDisabled)), nil
	}

	if len(pref.Channels) == 0 {
		return s.finish(ctx, span, entities.Suppress(event, entities.ReasonNoChannelsConfigured)), nil
	}

	return s.finish(ctx, span, entities.Process(event, pref.Channels)), nil
}

func (s *DecisionService) finish(ctx context.Context, span trace.Span, decision *entities.Decision) *entities.Decision {
	span.SetAttributes(
		attribute.String("decision", string(decision.Decision)),
		attribute.String("decision.reason", string(decision.Reason)),
	)
	observability.RecordDecision(ctx, s.metrics, string(decision.Decision), string(decision.Reason))
	observability.LoggerFromContext(ctx).Info().
		Str("event_id", decision.EventID).
		Str("user_id", decision.UserID).
		Str("decision", string(decision.Decision)).
		Str("reason", string(decision.Reason)).
		Msg("Notification decision")
	return decision
}

package database

import (
	"context"
	"time"

	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/repositories"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// InstrumentedPreferenceAdapter records a span and a duration metric for
// every store operation.
type InstrumentedPreferenceAdapter struct {
	adapter repositories.PreferenceRepository
	backend string
	metrics *observability.Metrics
}

// NewInstrumentedPreferenceAdapter wraps adapter, labelling telemetry with backend
func NewInstrumentedPreferenceAdapter(adapter repositories.PreferenceRepository, backend string, metrics *observability.Metrics) repositories.PreferenceRepository {
	return &InstrumentedPreferenceAdapter{adapter: adapter, backend: backend, metrics: metrics}
}

func (a *InstrumentedPreferenceAdapter) observe(ctx context.Context, operation, userID string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, "preferences."+operation)
	defer span.End()

	observability.SetSpanAttributes(span,
		attribute.String("db.system", a.backend),
		attribute.String("db.operation", operation),
		attribute.String("user.id", userID),
	)

	start := time.Now()
	err := fn(ctx)
	observability.RecordStorageMetric(ctx, a.metrics, a.backend, operation, time.Since(start))
	if err != nil && !apperrors.IsNotFound(err) {
		observability.RecordError(span, err)
	}
	return err
}

// Get retrieves the record for a user
func (a *InstrumentedPreferenceAdapter) Get(ctx context.Context, userID string) (*entities.PreferencesRecord, error) {
	var record *entities.PreferencesRecord
	err := a.observe(ctx, "get", userID, func(ctx context.Context) error {
		var err error
		record, err = a.adapter.Get(ctx, userID)
		return err
	})
	return record, err
}

// Put stores the record
func (a *InstrumentedPreferenceAdapter) Put(ctx context.Context, record *entities.PreferencesRecord) error {
	userID := ""
	if record != nil {
		userID = record.UserID
	}
	return a.observe(ctx, "put", userID, func(ctx context.Context) error {
		return a.adapter.Put(ctx, record)
	})
}

// Delete removes the record for a user
func (a *InstrumentedPreferenceAdapter) Delete(ctx context.Context, userID string) error {
	return a.observe(ctx, "delete", userID, func(ctx context.Context) error {
		return a.adapter.Delete(ctx, userID)
	})
}

// Ping checks the wrapped store
func (a *InstrumentedPreferenceAdapter) Ping(ctx context.Context) error {
	return a.adapter.Ping(ctx)
}

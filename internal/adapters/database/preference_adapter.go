package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/repositories"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

// DefaultPreferencesTable is the table created by the bundled migration
const DefaultPreferencesTable = "notification_preferences"

// PreferenceAdapter stores preference records in Postgres, one row per user
// with JSONB columns for the per-event-type map and the DND windows.
type PreferenceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	table  string
}

type preferenceRow struct {
	UserID      string    `db:"user_id"`
	Preferences []byte    `db:"preferences"`
	DndWindows  []byte    `db:"dnd_windows"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// NewPreferenceAdapter creates a new preference adapter
func NewPreferenceAdapter(client *postgres.Client, table string) repositories.PreferenceRepository {
	if table == "" {
		table = DefaultPreferencesTable
	}
	return &PreferenceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		table:  table,
	}
}

// Get retrieves the record for a user
func (a *PreferenceAdapter) Get(ctx context.Context, userID string) (*entities.PreferencesRecord, error) {
	query, args, err := a.db.Select("user_id", "preferences", "dnd_windows", "updated_at").
		From(a.table).
		Where(goqu.Ex{"user_id": userID}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row preferenceRow
	err = a.client.DB().GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("preferences for user %s not found", userID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get preferences", err)
	}

	record := &entities.PreferencesRecord{
		UserID:    row.UserID,
		UpdatedAt: row.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal(row.Preferences, &record.Preferences); err != nil {
		return nil, apperrors.NewInternalError("failed to decode stored preferences", err)
	}
	if err := json.Unmarshal(row.DndWindows, &record.DndWindows); err != nil {
		return nil, apperrors.NewInternalError("failed to decode stored dnd windows", err)
	}
	record.Normalize()

	return record, nil
}

// Put upserts the record, replacing every column of an existing row
func (a *PreferenceAdapter) Put(ctx context.Context, record *entities.PreferencesRecord) error {
	if record == nil {
		return apperrors.NewInternalError("preferences record is nil", fmt.Errorf("preferences record is nil"))
	}

	stored := record.Clone()
	stored.Normalize()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	preferences, err := json.Marshal(stored.Preferences)
	if err != nil {
		return apperrors.NewInternalError("failed to encode preferences", err)
	}
	windows, err := json.Marshal(stored.DndWindows)
	if err != nil {
		return apperrors.NewInternalError("failed to encode dnd windows", err)
	}

	query, args, err := a.db.Insert(a.table).
		Rows(goqu.Record{
			"user_id":     stored.UserID,
			"preferences": string(preferences),
			"dnd_windows": string(windows),
			"updated_at":  stored.UpdatedAt,
		}).
		OnConflict(goqu.DoUpdate("user_id", goqu.Record{
			"preferences": goqu.I("excluded.preferences"),
			"dnd_windows": goqu.I("excluded.dnd_windows"),
			"updated_at":  goqu.I("excluded.updated_at"),
		})).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to store preferences", err)
	}
	return nil
}

// Delete removes the row for a user
func (a *PreferenceAdapter) Delete(ctx context.Context, userID string) error {
	query, args, err := a.db.Delete(a.table).
		Where(goqu.Ex{"user_id": userID}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete preferences", err)
	}
	return nil
}

// Ping verifies the database is reachable
func (a *PreferenceAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

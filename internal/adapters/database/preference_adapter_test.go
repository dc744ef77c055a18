package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/notification-orchestrator/internal/domain/entities"
	"github.com/zatekoja/notification-orchestrator/internal/domain/repositories"
	"github.com/zatekoja/notification-orchestrator/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/notification-orchestrator/pkg/errors"
)

func setupMockDB(t *testing.T) (repositories.PreferenceRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")
	t.Cleanup(func() { _ = db.Close() })
	return NewPreferenceAdapter(postgres.NewClientFromDB(db), ""), mock
}

func TestPreferenceAdapter_Get(t *testing.T) {
	repo, mock := setupMockDB(t)
	updatedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"user_id", "preferences", "dnd_windows", "updated_at"}).
		AddRow(
			"usr_1",
			[]byte(`{"order_shipped":{"enabled":true,"channels":["email","sms"]}}`),
			[]byte(`[{"dayOfWeek":["Monday"],"isFullDay":false,"startTime":"22:00","endTime":"07:00"}]`),
			updatedAt,
		)
	mock.ExpectQuery(`SELECT .* FROM "notification_preferences" WHERE \("user_id" = \$1\)`).
		WithArgs("usr_1").
		WillReturnRows(rows)

	record, err := repo.Get(context.Background(), "usr_1")
	require.NoError(t, err)

	assert.Equal(t, "usr_1", record.UserID)
	assert.Equal(t, updatedAt, record.UpdatedAt)
	require.Contains(t, record.Preferences, "order_shipped")
	assert.True(t, record.Preferences["order_shipped"].Enabled)
	assert.Equal(t, []entities.Channel{entities.ChannelEmail, entities.ChannelSMS}, record.Preferences["order_shipped"].Channels)
	require.Len(t, record.DndWindows, 1)
	assert.True(t, record.DndWindows[0].Days.Contains(time.Monday))
	assert.True(t, record.DndWindows[0].Wraps())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceAdapter_GetNotFound(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT .* FROM "notification_preferences"`).
		WithArgs("usr_missing").
		WillReturnError(sql.ErrNoRows)

	record, err := repo.Get(context.Background(), "usr_missing")
	assert.Nil(t, record)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceAdapter_GetDatabaseError(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT .* FROM "notification_preferences"`).
		WithArgs("usr_1").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Get(context.Background(), "usr_1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
}

func TestPreferenceAdapter_PutUpserts(t *testing.T) {
	repo, mock := setupMockDB(t)
	updatedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	record := entities.NewPreferencesRecord("usr_1", map[string]entities.EventTypePreference{
		"order_shipped": {Enabled: true, Channels: []entities.Channel{entities.ChannelPush}},
	}, nil)
	record.UpdatedAt = updatedAt

	mock.ExpectExec(`INSERT INTO "notification_preferences" .* ON CONFLICT \(user_id\) DO UPDATE SET`).
		WithArgs(
			"[]",
			`{"order_shipped":{"enabled":true,"channels":["push"]}}`,
			updatedAt,
			"usr_1",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Put(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceAdapter_Delete(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectExec(`DELETE FROM "notification_preferences" WHERE \("user_id" = \$1\)`).
		WithArgs("usr_1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "usr_1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

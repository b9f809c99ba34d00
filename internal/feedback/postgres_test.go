package feedback

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var feedbackColumns = []string{
	"id", "recommendation_id", "patient_id", "clinician",
	"suggested_protocol_id", "chosen_protocol_id", "decision", "confidence_score",
	"notes", "created_at", "updated_at",
}

func setupMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectPing()
	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	return store, mock
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	_, err := NewPostgresStore(nil)
	assert.Error(t, err)
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock := setupMockStore(t)
	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	fb := sampleFeedback("rec-1", "dr.lee", DecisionAccepted)
	mock.ExpectQuery("INSERT INTO recommendation_feedback").
		WithArgs("rec-1", "patient-001", "dr.lee", "breast-ac-t", "", "accepted", 95, "Discussed at tumour board", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	require.NoError(t, store.Save(context.Background(), fb))
	assert.EqualValues(t, 7, fb.ID)
	assert.Equal(t, created, fb.CreatedAt)
	assert.False(t, fb.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveInvalidSkipsDatabase(t *testing.T) {
	store, mock := setupMockStore(t)

	fb := sampleFeedback("", "dr.lee", DecisionAccepted)
	assert.Error(t, store.Save(context.Background(), fb))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDatabaseError(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("INSERT INTO recommendation_feedback").WillReturnError(errors.New("connection reset"))

	err := store.Save(context.Background(), sampleFeedback("rec-1", "dr.lee", DecisionAccepted))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save feedback")
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := setupMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM recommendation_feedback WHERE recommendation_id = \\$1 AND clinician = \\$2").
		WithArgs("rec-1", "dr.lee").
		WillReturnRows(sqlmock.NewRows(feedbackColumns).
			AddRow(int64(3), "rec-1", "patient-001", "dr.lee", "breast-ac-t", "breast-tch", "alternative", 95, "", now, now))

	fb, err := store.Get(context.Background(), "rec-1", "dr.lee")
	require.NoError(t, err)
	require.NotNil(t, fb)
	assert.Equal(t, DecisionAlternative, fb.Decision)
	assert.Equal(t, "breast-tch", fb.ChosenProtocolID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetMissing(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM recommendation_feedback").
		WithArgs("rec-unknown", "dr.lee").
		WillReturnError(sql.ErrNoRows)

	fb, err := store.Get(context.Background(), "rec-unknown", "dr.lee")
	require.NoError(t, err)
	assert.Nil(t, fb)
}

func TestPostgresStore_List(t *testing.T) {
	store, mock := setupMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM recommendation_feedback ORDER BY created_at DESC").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(feedbackColumns).
			AddRow(int64(2), "rec-2", "", "dr.lee", "lung-osimertinib", "", "rejected", 70, "", now, now).
			AddRow(int64(1), "rec-1", "", "dr.lee", "breast-ac-t", "", "accepted", 95, "", now, now))

	list, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, DecisionRejected, list[0].Decision)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountAndSummarize(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM recommendation_feedback").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectQuery("SELECT decision, COUNT\\(\\*\\) FROM recommendation_feedback GROUP BY decision").
		WillReturnRows(sqlmock.NewRows([]string{"decision", "count"}).
			AddRow("accepted", int64(3)).
			AddRow("rejected", int64(2)))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)

	summary, err := store.Summarize(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, summary.Total)
	assert.EqualValues(t, 0, summary.ByDecision[DecisionAlternative])
	assert.InDelta(t, 0.6, summary.AcceptanceRate, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("DELETE FROM recommendation_feedback WHERE id = \\$1").
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/internal/ledger"
	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

func testRecord(id string) *types.BetRecord {
	return &types.BetRecord{
		ID:             id,
		Recommendation: ledger.CreateTestRecommendation("game-1", 1.25),
		State:          types.StatePending,
		StakeUnits:     1.25,
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
		Version:        1,
	}
}

func newMockStore(t *testing.T, dialect Dialect) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewSQLStore(db, dialect, zap.NewNop()), mock
}

func TestRebind(t *testing.T) {
	pg := NewSQLStore(nil, DialectPostgres, nil)
	lite := NewSQLStore(nil, DialectSQLite, nil)

	q := `UPDATE t SET a = ? WHERE id = ? AND version = ?`
	assert.Equal(t, `UPDATE t SET a = $1 WHERE id = $2 AND version = $3`, pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestSQLStore_EnsureSchema(t *testing.T) {
	store, mock := newMockStore(t, DialectPostgres)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS bet_records").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_bet_records_state").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_bet_records_created_at").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Save(t *testing.T) {
	store, mock := newMockStore(t, DialectPostgres)
	rec := testRecord("bet-1")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bet_records")).
		WithArgs(
			"bet-1",
			"game-1",
			"spread",
			"pending",
			1.25,
			nil,
			nil,
			sqlmock.AnyArg(),
			testNow.UnixNano(),
			testNow.UnixNano(),
			1,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func recordRows(rec *types.BetRecord) *sqlmock.Rows {
	recJSON, _ := json.Marshal(rec.Recommendation)
	return sqlmock.NewRows([]string{
		"id", "state", "stake_units", "outcome", "realized_units", "recommendation",
		"created_at", "updated_at", "version",
	}).AddRow(rec.ID, string(rec.State), rec.StakeUnits, nil, nil, string(recJSON),
		rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(), rec.Version)
}

func TestSQLStore_Load(t *testing.T) {
	store, mock := newMockStore(t, DialectPostgres)
	rec := testRecord("bet-1")

	mock.ExpectQuery(regexp.QuoteMeta("FROM bet_records WHERE id = $1")).
		WithArgs("bet-1").
		WillReturnRows(recordRows(rec))

	got, err := store.Load(context.Background(), "bet-1")
	require.NoError(t, err)
	assert.Equal(t, "bet-1", got.ID)
	assert.Equal(t, types.StatePending, got.State)
	assert.Equal(t, "game-1", got.Recommendation.Game.ID)
	assert.True(t, got.CreatedAt.Equal(testNow))
	assert.Nil(t, got.Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_LoadNotFound(t *testing.T) {
	store, mock := newMockStore(t, DialectSQLite)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bet_records WHERE id = ?")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSQLStore_ListFiltered(t *testing.T) {
	store, mock := newMockStore(t, DialectPostgres)
	rec := testRecord("bet-1")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE state = $1 ORDER BY created_at, id")).
		WithArgs("pending").
		WillReturnRows(recordRows(rec))

	got, err := store.List(context.Background(), ledger.Filter{State: types.StatePending})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bet-1", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Update(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store, mock := newMockStore(t, DialectPostgres)
		rec := testRecord("bet-1")
		rec.State = types.StateApproved
		rec.Version = 2

		mock.ExpectExec(regexp.QuoteMeta("UPDATE bet_records")).
			WithArgs("approved", 1.25, nil, nil, sqlmock.AnyArg(), 2, "bet-1", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Update(context.Background(), rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale-version", func(t *testing.T) {
		store, mock := newMockStore(t, DialectPostgres)
		rec := testRecord("bet-1")
		rec.Version = 3

		mock.ExpectExec(regexp.QuoteMeta("UPDATE bet_records")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM bet_records WHERE id = $1")).
			WithArgs("bet-1").
			WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

		err := store.Update(context.Background(), rec)
		assert.ErrorIs(t, err, types.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		store, mock := newMockStore(t, DialectPostgres)
		rec := testRecord("bet-1")
		rec.Version = 2

		mock.ExpectExec(regexp.QuoteMeta("UPDATE bet_records")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM bet_records")).
			WillReturnRows(sqlmock.NewRows([]string{"one"}))

		err := store.Update(context.Background(), rec)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestSQLStore_Close(t *testing.T) {
	store, mock := newMockStore(t, DialectPostgres)
	mock.ExpectClose()

	require.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInTransaction_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := tm.InTransaction(context.Background(), func(ctx context.Context, _ repositories.Transaction) error {
		if _, err := GetExecutor(ctx, db).ExecContext(ctx, "DELETE FROM users"); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExecutor(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())

	assert.Equal(t, db.DB, GetExecutor(context.Background(), db))

	mock.ExpectBegin()
	mock.ExpectCommit()
	err := tm.InTransaction(context.Background(), func(ctx context.Context, _ repositories.Transaction) error {
		assert.NotEqual(t, db.DB, GetExecutor(ctx, db))
		return nil
	})
	require.NoError(t, err)
}

func TestTransaction_RollbackAfterCommit(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := tm.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, tx.Rollback())
}

func TestHealthCheck(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()
	db := Wrap(sqlDB, zap.NewNop())

	mock.ExpectPing()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	require.NoError(t, db.HealthCheck(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

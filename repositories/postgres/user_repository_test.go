package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var userRowColumns = []string{"id", "email", "name", "role", "is_banned", "created_at", "updated_at"}

func TestUserRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id")).
		WithArgs(2, 10).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(uuid.NewString(), "a@example.com", "A", "user", false, now, now).
			AddRow(uuid.NewString(), "b@example.com", "B", "moderator", true, now, now))

	users, total, err := repo.List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, users, 2)
	assert.Equal(t, rbac.RoleModerator, users[1].Role)
	assert.True(t, users[1].IsBanned)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ToggleBanned(t *testing.T) {
	ctx := context.Background()

	t.Run("flips the flag", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET is_banned = NOT is_banned")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.String(), "a@example.com", "A", "user", true, now, now))

		user, err := repo.ToggleBanned(ctx, id)
		require.NoError(t, err)
		assert.True(t, user.IsBanned)
	})

	t.Run("unknown user", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET is_banned")).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := repo.ToggleBanned(ctx, uuid.New())
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestUserRepository_UpdateRole(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET role = $2")).
		WithArgs(id, "admin").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(id.String(), "a@example.com", "A", "admin", false, now, now))

	user, err := repo.UpdateRole(context.Background(), id, rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, user.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), uuid.New()), repositories.ErrNotFound)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userColumns = `id, email, name, role, is_banned, created_at, updated_at`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.IsBanned, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("user %s", id))
	}
	return user, nil
}

// List returns one page of users ordered by creation date and the total count
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating users: %w", err)
	}

	return users, total, nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// ToggleBanned flips is_banned and returns the updated user
func (r *UserRepository) ToggleBanned(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		UPDATE users SET is_banned = NOT is_banned, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("user %s", id))
	}

	r.logger.Info("user ban toggled", zap.String("id", id.String()), zap.Bool("is_banned", user.IsBanned))
	return user, nil
}

// UpdateRole sets the role of a user and returns the updated user
func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role rbac.Role) (*models.User, error) {
	query := `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id, role))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("user %s", id))
	}

	r.logger.Info("user role updated", zap.String("id", id.String()), zap.String("role", role.String()))
	return user, nil
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectAffected(res, fmt.Sprintf("user %s", id))
}

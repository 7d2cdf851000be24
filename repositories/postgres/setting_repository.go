package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/repositories"
	"go.uber.org/zap"
)

// SettingRepository implements the repositories.SettingRepository interface
type SettingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *DB, logger *zap.Logger) repositories.SettingRepository {
	return &SettingRepository{db: db, logger: logger}
}

// List returns every setting ordered by key
func (r *SettingRepository) List(ctx context.Context) ([]*models.Setting, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx,
		`SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := []*models.Setting{}
	for rows.Next() {
		s := &models.Setting{}
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return settings, nil
}

// Get retrieves a setting by key
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	s := &models.Setting{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("setting %q", key))
	}
	return s, nil
}

// Upsert creates or replaces a setting
func (r *SettingRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	setting.UpdatedAt = time.Now()
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, setting.Key, []byte(setting.Value), setting.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}

	r.logger.Debug("setting saved", zap.String("key", setting.Key))
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chillfilm/chillfilm-api/config"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return Wrap(db, logger), nil
}

// Wrap adapts an existing pool, e.g. one opened by sqlmock in tests
func Wrap(db *sql.DB, logger *zap.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// schema is applied idempotently at startup when auto-migration is enabled
const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(32) NOT NULL DEFAULT 'user',
		is_banned BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS movies (
		id UUID PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		type VARCHAR(16) NOT NULL DEFAULT 'movie',
		year INTEGER NOT NULL DEFAULT 0,
		country VARCHAR(100) NOT NULL DEFAULT '',
		categories TEXT[] NOT NULL DEFAULT '{}',
		actors TEXT[] NOT NULL DEFAULT '{}',
		director VARCHAR(255) NOT NULL DEFAULT '',
		poster TEXT NOT NULL DEFAULT '',
		backdrop TEXT NOT NULL DEFAULT '',
		video_url TEXT NOT NULL DEFAULT '',
		trailer TEXT NOT NULL DEFAULT '',
		seasons INTEGER NOT NULL DEFAULT 0,
		total_episodes INTEGER NOT NULL DEFAULT 0,
		is_published BOOLEAN NOT NULL DEFAULT true,
		is_hero BOOLEAN NOT NULL DEFAULT false,
		view_count BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR(100) PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
	CREATE INDEX IF NOT EXISTS idx_movies_type_published ON movies(type, is_published);
	CREATE INDEX IF NOT EXISTS idx_movies_created_at ON movies(created_at);
	CREATE INDEX IF NOT EXISTS idx_movies_view_count ON movies(view_count);
	CREATE INDEX IF NOT EXISTS idx_movies_categories ON movies USING GIN (categories);
	CREATE INDEX IF NOT EXISTS idx_movies_actors ON movies USING GIN (actors);
`

// InitSchema initializes the database schema
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("database schema initialized successfully")
	return nil
}

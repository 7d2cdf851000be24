package postgres

import (
	"context"

	"github.com/chillfilm/chillfilm-api/config"
	"github.com/chillfilm/chillfilm-api/repositories"
	"go.uber.org/zap"
)

// RepositoryFactory creates and manages all repositories over one pool
type RepositoryFactory struct {
	db     *DB
	logger *zap.Logger
}

// NewRepositoryFactory opens the database and, when enabled, applies the schema
func NewRepositoryFactory(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.InitSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return NewRepositoryFactoryFromDB(db, logger), nil
}

// NewRepositoryFactoryFromDB builds a factory around an already opened pool
func NewRepositoryFactoryFromDB(db *DB, logger *zap.Logger) *RepositoryFactory {
	return &RepositoryFactory{db: db, logger: logger}
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Movies:   NewMovieRepository(f.db, f.logger),
		Users:    NewUserRepository(f.db, f.logger),
		Settings: NewSettingRepository(f.db, f.logger),
	}
}

// GetTransactionManager returns a transaction manager
func (f *RepositoryFactory) GetTransactionManager() repositories.TransactionManager {
	return NewTransactionManager(f.db, f.logger)
}

// GetDB returns the database connection
func (f *RepositoryFactory) GetDB() *DB {
	return f.db
}

// Close closes the database connection
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}

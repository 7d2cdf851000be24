package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chillfilm/chillfilm-api/auth"
	"github.com/chillfilm/chillfilm-api/config"
	"github.com/chillfilm/chillfilm-api/handlers"
	"github.com/chillfilm/chillfilm-api/internal/observability"
	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/middleware"
	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/chillfilm/chillfilm-api/repositories/postgres"
	"github.com/chillfilm/chillfilm-api/services"
	"go.uber.org/zap"
)

const settingsCleanupInterval = time.Minute

// errAuthNotConfigured is returned for every token when no JWT secret is set
var errAuthNotConfigured = errors.New("authentication not configured")

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	DB      *postgres.DB
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Movies    repositories.MovieRepository
	Users     repositories.UserRepository
	Settings  repositories.SettingRepository
	TxManager repositories.TransactionManager

	// Authorization
	Permissions    *rbac.Evaluator
	AuthMiddleware *middleware.AuthMiddleware
	RBACMiddleware *middleware.RBACMiddleware

	// Services
	MovieService   *services.MovieService
	UserService    *services.UserService
	SettingService *services.SettingService
	SettingsCache  *services.Cache[[]*models.Setting]

	// Handlers
	AuthHandler    *auth.Handler
	HealthHandler  *handlers.HealthHandler
	RBACHandler    *handlers.RBACHandler
	MovieHandler   *handlers.MovieHandler
	UserHandler    *handlers.UserHandler
	SettingHandler *handlers.SettingHandler

	stopCleanup chan struct{}
}

// NewDependencies opens the database and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return Build(cfg, factory, logger), nil
}

// Build wires every component on top of an open repository factory
func Build(cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) *Dependencies {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
		stopCleanup: make(chan struct{}),
	}
	if cfg.Observability.MetricsEnabled {
		deps.Metrics = observability.NewMetrics()
	}

	deps.initRepositories()
	deps.initAuth(cfg)
	deps.initServices()
	deps.initHandlers(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Movies = repos.Movies
	d.Users = repos.Users
	d.Settings = repos.Settings
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	d.Permissions = rbac.NewEvaluator(rbac.DefaultTable())
	d.RBACMiddleware = middleware.NewRBACMiddleware(d.Permissions, d.Logger, d.Metrics)

	var lookup auth.UserLookup
	if cfg.Auth.LookupUsers {
		lookup = d.Users
	}
	d.AuthHandler = auth.NewHandler(lookup, cfg.IsProduction(), d.Logger)

	if cfg.Auth.JWTSecret == "" {
		d.Logger.Warn("JWT secret not configured, protected routes will reject every request")
		d.AuthMiddleware = middleware.NewAuthMiddleware(rejectAllValidator{}, d.Logger)
		return
	}

	validator := auth.NewJWTValidator(auth.Config{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
		Leeway: 30 * time.Second,
	}, lookup, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(validator, d.Logger)
	d.Logger.Info("auth initialized", zap.Bool("lookup_users", cfg.Auth.LookupUsers))
}

func (d *Dependencies) initServices() {
	d.MovieService = services.NewMovieService(d.Movies, d.Users, d.TxManager, d.Logger)
	d.UserService = services.NewUserService(d.Users, d.Permissions.Table(), d.Logger)

	d.SettingsCache = services.NewSettingsCache()
	go d.SettingsCache.StartCleanupWorker(settingsCleanupInterval, d.stopCleanup)
	d.SettingService = services.NewSettingService(d.Settings, d.SettingsCache, d.Logger)
}

func (d *Dependencies) initHandlers(cfg *config.Config) {
	d.HealthHandler = handlers.NewHealthHandler(d.DB, cfg.Environment, d.Logger)
	d.RBACHandler = handlers.NewRBACHandler(d.Permissions, d.Logger)
	d.MovieHandler = handlers.NewMovieHandler(d.MovieService, d.Permissions, cfg.BaseURL, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.UserService, d.Logger)
	d.SettingHandler = handlers.NewSettingHandler(d.SettingService, d.Logger)
}

// rejectAllValidator rejects all tokens (used when no JWT secret is configured)
type rejectAllValidator struct{}

func (rejectAllValidator) ValidateToken(context.Context, string) (*middleware.Principal, error) {
	return nil, errAuthNotConfigured
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	if d.stopCleanup != nil {
		close(d.stopCleanup)
		d.stopCleanup = nil
	}

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return errors.Join(errs...)
}

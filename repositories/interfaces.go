package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned (wrapped) when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned (wrapped) when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// MovieFilter narrows and orders a movie listing. Zero values mean "no filter".
type MovieFilter struct {
	Search      string
	Actor       string
	Category    string
	Country     string
	Year        int
	Type        models.MovieType
	IsPublished *bool
	// HasBackdrop keeps only movies with a backdrop image
	HasBackdrop bool
	// CreatedAfter keeps movies added at or after the given time
	CreatedAfter time.Time
	// SortBy is a column name; implementations must only accept whitelisted columns
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

// MovieRepository handles movie data operations
type MovieRepository interface {
	// Create inserts a new movie
	Create(ctx context.Context, movie *models.Movie) error

	// GetByID retrieves a movie by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Movie, error)

	// GetBySlug retrieves a movie by slug
	GetBySlug(ctx context.Context, slug string) (*models.Movie, error)

	// List returns one page of movies matching filter and the total match count
	List(ctx context.Context, filter MovieFilter) ([]*models.Movie, int64, error)

	// Update overwrites the editable fields of a movie
	Update(ctx context.Context, movie *models.Movie) error

	// Delete deletes a movie
	Delete(ctx context.Context, id uuid.UUID) error

	// TogglePublished flips is_published and returns the updated movie
	TogglePublished(ctx context.Context, id uuid.UUID) (*models.Movie, error)

	// SetHero sets the hero flag of a single movie
	SetHero(ctx context.Context, id uuid.UUID, hero bool) error

	// ClearHeroExcept unsets the hero flag on every movie except id
	ClearHeroExcept(ctx context.Context, id uuid.UUID) error

	// GetHero returns the published hero movie
	GetHero(ctx context.Context) (*models.Movie, error)

	// IncrementViews adds one view and returns the updated movie
	IncrementViews(ctx context.Context, id uuid.UUID) (*models.Movie, error)

	// CountPublished counts published movies of the given type
	CountPublished(ctx context.Context, movieType models.MovieType) (int64, error)

	// SumPublishedViews sums view counts over published movies
	SumPublishedViews(ctx context.Context) (int64, error)

	// Stats returns the admin dashboard counters
	Stats(ctx context.Context) (*models.MovieStats, error)
}

// UserRepository handles user data operations
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// List returns one page of users ordered by creation date and the total count
	List(ctx context.Context, limit, offset int) ([]*models.User, int64, error)

	// Count returns the number of users
	Count(ctx context.Context) (int64, error)

	// ToggleBanned flips is_banned and returns the updated user
	ToggleBanned(ctx context.Context, id uuid.UUID) (*models.User, error)

	// UpdateRole sets the role of a user and returns the updated user
	UpdateRole(ctx context.Context, id uuid.UUID, role rbac.Role) (*models.User, error)

	// Delete deletes a user
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingRepository handles site settings
type SettingRepository interface {
	// List returns every setting ordered by key
	List(ctx context.Context) ([]*models.Setting, error)

	// Get retrieves a setting by key
	Get(ctx context.Context, key string) (*models.Setting, error)

	// Upsert creates or replaces a setting
	Upsert(ctx context.Context, setting *models.Setting) error
}

// Repositories holds all repository instances
type Repositories struct {
	Movies   MovieRepository
	Users    UserRepository
	Settings SettingRepository
}

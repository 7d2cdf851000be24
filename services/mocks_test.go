package services

import (
	"context"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockMovieRepository is a mock implementation of MovieRepository
type MockMovieRepository struct {
	mock.Mock
}

func (m *MockMovieRepository) movie(args mock.Arguments) (*models.Movie, error) {
	if movie := args.Get(0); movie != nil {
		return movie.(*models.Movie), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMovieRepository) Create(ctx context.Context, movie *models.Movie) error {
	return m.Called(ctx, movie).Error(0)
}

func (m *MockMovieRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	return m.movie(m.Called(ctx, id))
}

func (m *MockMovieRepository) GetBySlug(ctx context.Context, slug string) (*models.Movie, error) {
	return m.movie(m.Called(ctx, slug))
}

func (m *MockMovieRepository) List(ctx context.Context, filter repositories.MovieFilter) ([]*models.Movie, int64, error) {
	args := m.Called(ctx, filter)
	if movies := args.Get(0); movies != nil {
		return movies.([]*models.Movie), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *MockMovieRepository) Update(ctx context.Context, movie *models.Movie) error {
	return m.Called(ctx, movie).Error(0)
}

func (m *MockMovieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMovieRepository) TogglePublished(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	return m.movie(m.Called(ctx, id))
}

func (m *MockMovieRepository) SetHero(ctx context.Context, id uuid.UUID, hero bool) error {
	return m.Called(ctx, id, hero).Error(0)
}

func (m *MockMovieRepository) ClearHeroExcept(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMovieRepository) GetHero(ctx context.Context) (*models.Movie, error) {
	return m.movie(m.Called(ctx))
}

func (m *MockMovieRepository) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	return m.movie(m.Called(ctx, id))
}

func (m *MockMovieRepository) CountPublished(ctx context.Context, movieType models.MovieType) (int64, error) {
	args := m.Called(ctx, movieType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMovieRepository) SumPublishedViews(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMovieRepository) Stats(ctx context.Context) (*models.MovieStats, error) {
	args := m.Called(ctx)
	if stats := args.Get(0); stats != nil {
		return stats.(*models.MovieStats), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	if users := args.Get(0); users != nil {
		return users.([]*models.User), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ToggleBanned(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role rbac.Role) (*models.User, error) {
	return m.user(m.Called(ctx, id, role))
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockSettingRepository is a mock implementation of SettingRepository
type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) List(ctx context.Context) ([]*models.Setting, error) {
	args := m.Called(ctx)
	if settings := args.Get(0); settings != nil {
		return settings.([]*models.Setting), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	args := m.Called(ctx, key)
	if setting := args.Get(0); setting != nil {
		return setting.(*models.Setting), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	return m.Called(ctx, setting).Error(0)
}

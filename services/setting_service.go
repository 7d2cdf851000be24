package services

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/repositories"
	"go.uber.org/zap"
)

const (
	settingsCacheKey = "settings:all"
	settingsCacheTTL = 5 * time.Minute
)

var settingKeyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]{0,63}$`)

// SettingService serves site settings through a short-lived cache
type SettingService struct {
	settings repositories.SettingRepository
	cache    *Cache[[]*models.Setting]
	logger   *zap.Logger
}

// NewSettingService creates a new SettingService. A nil cache disables caching.
func NewSettingService(settings repositories.SettingRepository, cache *Cache[[]*models.Setting], logger *zap.Logger) *SettingService {
	return &SettingService{
		settings: settings,
		cache:    cache,
		logger:   logger,
	}
}

// NewSettingsCache returns the cache sized for SettingService
func NewSettingsCache() *Cache[[]*models.Setting] {
	return NewCache[[]*models.Setting](1, settingsCacheTTL)
}

// List returns every setting
func (s *SettingService) List(ctx context.Context) ([]*models.Setting, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(settingsCacheKey); ok {
			return cached, nil
		}
	}

	settings, err := s.settings.List(ctx)
	if err != nil {
		return nil, WrapInternal("failed to load settings", err)
	}

	if s.cache != nil {
		s.cache.Set(settingsCacheKey, settings)
	}
	return settings, nil
}

// Get returns a single setting
func (s *SettingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		return nil, FromRepository(err, ErrSettingNotFound, nil, "failed to load setting")
	}
	return setting, nil
}

// Put creates or replaces the setting stored under key
func (s *SettingService) Put(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	if !settingKeyPattern.MatchString(key) {
		return nil, NewDomainError(ErrorTypeValidation, "Invalid setting key", nil).
			WithDetail("key", "must start with a letter and contain only letters, digits, '_', '.' or '-'")
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, NewDomainError(ErrorTypeValidation, "Setting value must be valid JSON", nil).
			WithDetail("value", "must be valid JSON")
	}

	setting := models.NewSetting(key, value)
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, WrapInternal("failed to save setting", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(settingsCacheKey)
	}

	s.logger.Info("setting updated", zap.String("key", key))
	return setting, nil
}

package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*limit within a Postgres integer OFFSET
	MaxPage = math.MaxInt32 / MaxPageSize

	// homepage rails
	DefaultRailLimit    = 10
	DefaultRankingLimit = 5

	minSearchLength = 2
)

// rankingPeriods maps a ranking period to the window of creation dates it covers.
// A zero window means no lower bound.
var rankingPeriods = map[string]time.Duration{
	"day":   24 * time.Hour,
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
	"year":  365 * 24 * time.Hour,
	"all":   0,
}

// movieSortFields maps API sort names to repository columns
var movieSortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"year":      "year",
	"viewCount": "view_count",
}

// MovieListOptions are the listing parameters accepted from the query string
type MovieListOptions struct {
	Page        int
	Limit       int
	Search      string
	Actor       string
	Category    string
	Country     string
	Year        int
	Type        models.MovieType
	SortBy      string
	SortOrder   string
	IsPublished *bool
}

// Normalize clamps paging, applies defaults and whitelists the sort field
func (o MovieListOptions) Normalize() MovieListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Page > MaxPage {
		o.Page = MaxPage
	}
	if o.Limit <= 0 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	if _, ok := movieSortFields[o.SortBy]; !ok {
		o.SortBy = "createdAt"
	}
	if o.SortOrder != "asc" {
		o.SortOrder = "desc"
	}
	o.Search = strings.TrimSpace(o.Search)
	return o
}

func (o MovieListOptions) filter() repositories.MovieFilter {
	return repositories.MovieFilter{
		Search:      o.Search,
		Actor:       o.Actor,
		Category:    o.Category,
		Country:     o.Country,
		Year:        o.Year,
		Type:        o.Type,
		IsPublished: o.IsPublished,
		SortBy:      movieSortFields[o.SortBy],
		SortDesc:    o.SortOrder == "desc",
		Limit:       o.Limit,
		Offset:      (o.Page - 1) * o.Limit,
	}
}

// MoviePage is one page of a movie listing
type MoviePage struct {
	Movies  []*models.Movie
	Total   int64
	Options MovieListOptions
}

// MovieInput carries the writable fields of a movie. Nil fields are left
// untouched on update.
type MovieInput struct {
	Title         *string           `json:"title" validate:"omitempty,min=1,max=255"`
	Slug          *string           `json:"slug" validate:"omitempty,max=255"`
	Description   *string           `json:"description"`
	Type          *models.MovieType `json:"type" validate:"omitempty,oneof=movie series"`
	Year          *int              `json:"year" validate:"omitempty,gte=1888,lte=2100"`
	Country       *string           `json:"country" validate:"omitempty,max=100"`
	Categories    []string          `json:"categories"`
	Actors        []string          `json:"actors"`
	Director      *string           `json:"director"`
	Poster        *string           `json:"poster"`
	Backdrop      *string           `json:"backdrop"`
	VideoURL      *string           `json:"videoUrl"`
	Trailer       *string           `json:"trailer"`
	Seasons       *int              `json:"seasons" validate:"omitempty,gte=0"`
	TotalEpisodes *int              `json:"totalEpisodes" validate:"omitempty,gte=0"`
	IsPublished   *bool             `json:"isPublished"`
}

// apply copies the set fields onto m and re-derives the slug when needed
func (in MovieInput) apply(m *models.Movie) {
	if in.Title != nil {
		m.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Type != nil {
		m.Type = *in.Type
	}
	if in.Year != nil {
		m.Year = *in.Year
	}
	if in.Country != nil {
		m.Country = *in.Country
	}
	if in.Categories != nil {
		m.Categories = in.Categories
	}
	if in.Actors != nil {
		m.Actors = in.Actors
	}
	if in.Director != nil {
		m.Director = *in.Director
	}
	if in.Poster != nil {
		m.Poster = *in.Poster
	}
	if in.Backdrop != nil {
		m.Backdrop = *in.Backdrop
	}
	if in.VideoURL != nil {
		m.VideoURL = *in.VideoURL
	}
	if in.Trailer != nil {
		m.Trailer = *in.Trailer
	}
	if in.Seasons != nil {
		m.Seasons = *in.Seasons
	}
	if in.TotalEpisodes != nil {
		m.TotalEpisodes = *in.TotalEpisodes
	}
	if in.IsPublished != nil {
		m.IsPublished = *in.IsPublished
	}

	switch {
	case in.Slug != nil && strings.TrimSpace(*in.Slug) != "":
		m.Slug = models.Slugify(*in.Slug)
	case in.Title != nil:
		m.Slug = models.Slugify(m.Title)
	}
}

// MovieService implements the catalog operations
type MovieService struct {
	movies    repositories.MovieRepository
	users     repositories.UserRepository
	txManager repositories.TransactionManager
	logger    *zap.Logger
	now       func() time.Time
}

// NewMovieService creates a new MovieService
func NewMovieService(
	movies repositories.MovieRepository,
	users repositories.UserRepository,
	txManager repositories.TransactionManager,
	logger *zap.Logger,
) *MovieService {
	return &MovieService{
		movies:    movies,
		users:     users,
		txManager: txManager,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns one page of movies
func (s *MovieService) List(ctx context.Context, opts MovieListOptions) (*MoviePage, error) {
	opts = opts.Normalize()

	movies, total, err := s.movies.List(ctx, opts.filter())
	if err != nil {
		return nil, WrapInternal("failed to list movies", err)
	}
	return &MoviePage{Movies: movies, Total: total, Options: opts}, nil
}

// Search lists published movies whose title or description matches opts.Search.
// The remaining filters of opts (category, country, year, type, paging) still apply.
func (s *MovieService) Search(ctx context.Context, opts MovieListOptions) (*MoviePage, error) {
	opts.Search = strings.TrimSpace(opts.Search)
	if len([]rune(opts.Search)) < minSearchLength {
		return nil, ErrSearchTooShort
	}
	published := true
	opts.IsPublished = &published
	return s.List(ctx, opts)
}

// RailOptions bound a homepage rail
type RailOptions struct {
	Limit int
	Type  models.MovieType
}

// Latest returns the most recently added published movies
func (s *MovieService) Latest(ctx context.Context, opts RailOptions) ([]*models.Movie, error) {
	return s.rail(ctx, MovieListOptions{Limit: railLimit(opts.Limit, DefaultRailLimit), Type: opts.Type, SortBy: "createdAt"})
}

// Hot returns the most viewed published movies
func (s *MovieService) Hot(ctx context.Context, opts RailOptions) ([]*models.Movie, error) {
	return s.rail(ctx, MovieListOptions{Limit: railLimit(opts.Limit, DefaultRailLimit), Type: opts.Type, SortBy: "viewCount"})
}

// Featured returns the most viewed published movies that carry a backdrop image
func (s *MovieService) Featured(ctx context.Context, limit int) ([]*models.Movie, error) {
	published := true
	opts := MovieListOptions{Limit: railLimit(limit, DefaultRailLimit), SortBy: "viewCount", IsPublished: &published}.Normalize()

	filter := opts.filter()
	filter.HasBackdrop = true
	movies, _, err := s.movies.List(ctx, filter)
	if err != nil {
		return nil, WrapInternal("failed to list featured movies", err)
	}
	return movies, nil
}

// Ranking returns the most viewed published movies added within period
// (day, week, month, year or all; empty means week).
func (s *MovieService) Ranking(ctx context.Context, period string, opts RailOptions) ([]*models.Movie, error) {
	if period == "" {
		period = "week"
	}
	window, ok := rankingPeriods[period]
	if !ok {
		return nil, NewDomainError(ErrInvalidPeriod.Type, ErrInvalidPeriod.Message, nil).
			WithDetail("period", "must be one of day, week, month, year, all")
	}

	published := true
	listOpts := MovieListOptions{
		Limit:       railLimit(opts.Limit, DefaultRankingLimit),
		Type:        opts.Type,
		SortBy:      "viewCount",
		IsPublished: &published,
	}.Normalize()

	filter := listOpts.filter()
	if window > 0 {
		filter.CreatedAfter = s.now().Add(-window)
	}
	movies, _, err := s.movies.List(ctx, filter)
	if err != nil {
		return nil, WrapInternal("failed to rank movies", err)
	}
	return movies, nil
}

func (s *MovieService) rail(ctx context.Context, opts MovieListOptions) ([]*models.Movie, error) {
	published := true
	opts.IsPublished = &published
	page, err := s.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return page.Movies, nil
}

func railLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

// ByCategory lists published movies in category
func (s *MovieService) ByCategory(ctx context.Context, category string, opts MovieListOptions) (*MoviePage, error) {
	published := true
	opts.Category = category
	opts.IsPublished = &published
	return s.List(ctx, opts)
}

// Hero returns the current hero movie
func (s *MovieService) Hero(ctx context.Context) (*models.Movie, error) {
	movie, err := s.movies.GetHero(ctx)
	if err != nil {
		return nil, FromRepository(err, ErrMovieNotFound, nil, "failed to load hero movie")
	}
	return movie, nil
}

// Get returns a movie by ID
func (s *MovieService) Get(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, FromRepository(err, ErrMovieNotFound, nil, "failed to load movie")
	}
	return movie, nil
}

// GetBySlug returns a movie by slug
func (s *MovieService) GetBySlug(ctx context.Context, slug string) (*models.Movie, error) {
	movie, err := s.movies.GetBySlug(ctx, slug)
	if err != nil {
		return nil, FromRepository(err, ErrMovieNotFound, nil, "failed to load movie")
	}
	return movie, nil
}

// RecordView increments the view counter of a movie
func (s *MovieService) RecordView(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	movie, err := s.movies.IncrementViews(ctx, id)
	if err != nil {
		return nil, FromRepository(err, ErrMovieNotFound, nil, "failed to record view")
	}
	return movie, nil
}

// Create adds a movie. Title is required; the slug is derived from it when absent.
func (s *MovieService) Create(ctx context.Context, in MovieInput) (*models.Movie, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, NewDomainError(ErrorTypeValidation, "Title is required", nil).
			WithDetail("title", "is required")
	}

	movie := models.NewMovie("", models.MovieTypeMovie)
	in.apply(movie)
	if movie.Slug == "" {
		return nil, NewDomainError(ErrorTypeValidation, "Title must contain letters or digits", nil).
			WithDetail("title", "cannot produce a slug")
	}

	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, FromRepository(err, nil, ErrDuplicateSlug, "failed to create movie")
	}

	s.logger.Info("movie created",
		zap.String("movie_id", movie.ID.String()),
		zap.String("slug", movie.Slug))
	return movie, nil
}

// Update applies the set fields of in to the movie
func (s *MovieService) Update(ctx context.Context, id uuid.UUID, in MovieInput) (*models.Movie, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, NewDomainError(ErrorTypeValidation, "Title cannot be empty", nil).
			WithDetail("title", "cannot be empty")
	}

	movie, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	in.apply(movie)
	if err := s.movies.Update(ctx, movie); err != nil {
		return nil, FromRepository(err, ErrMovieNotFound, ErrDuplicateSlug, "failed to update movie")
	}

	s.logger.Info("movie updated", zap.String("movie_id", id.String()))
	return movie, nil
}

// Delete removes a movie
func (s *MovieService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.movies.Delete(ctx, id); err != nil {
		return FromRepository(err, ErrMovieNotFound, nil, "failed to delete movie")
	}
	s.logger.Info("movie deleted", zap.String("movie_id", id.String()))
	return nil
}

// TogglePublish flips the published flag
func (s *MovieService) TogglePublish(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	movie, err := s.movies.TogglePublished(ctx, id)
	if err != nil {
		return nil, FromRepository(err, ErrMovieNotFound, nil, "failed to toggle publish")
	}
	return movie, nil
}

// ToggleHero flips the hero flag. Turning it on clears it on every other movie
// in the same transaction, so at most one hero exists.
func (s *MovieService) ToggleHero(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	var movie *models.Movie
	err := WithTransaction(ctx, s.txManager, func(ctx context.Context, _ repositories.Transaction) error {
		current, err := s.movies.GetByID(ctx, id)
		if err != nil {
			return err
		}

		hero := !current.IsHero
		if hero {
			if err := s.movies.ClearHeroExcept(ctx, id); err != nil {
				return err
			}
		}
		if err := s.movies.SetHero(ctx, id, hero); err != nil {
			return err
		}
		current.IsHero = hero
		movie = current
		return nil
	})
	if err != nil {
		return nil, FromRepository(err, ErrMovieNotFound, nil, "failed to toggle hero")
	}

	s.logger.Info("movie hero toggled",
		zap.String("movie_id", id.String()),
		zap.Bool("is_hero", movie.IsHero))
	return movie, nil
}

// AdminStats returns the dashboard counters
func (s *MovieService) AdminStats(ctx context.Context) (*models.MovieStats, error) {
	stats, err := s.movies.Stats(ctx)
	if err != nil {
		return nil, WrapInternal("failed to load movie stats", err)
	}
	return stats, nil
}

// PublicStats returns the landing page counters, queried concurrently
func (s *MovieService) PublicStats(ctx context.Context) (*models.PublicStats, error) {
	var stats models.PublicStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalMovies, err = s.movies.CountPublished(ctx, models.MovieTypeMovie)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalSeries, err = s.movies.CountPublished(ctx, models.MovieTypeSeries)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalViews, err = s.movies.SumPublishedViews(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.users.Count(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, WrapInternal("failed to load stats", err)
	}
	return &stats, nil
}

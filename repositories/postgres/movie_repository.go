package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const movieColumns = `id, title, slug, description, type, year, country, categories, actors,
	director, poster, backdrop, video_url, trailer, seasons, total_episodes,
	is_published, is_hero, view_count, created_at, updated_at`

// movieSortColumns whitelists the ORDER BY columns accepted by List
var movieSortColumns = map[string]struct{}{
	"created_at": {},
	"updated_at": {},
	"title":      {},
	"year":       {},
	"view_count": {},
}

// likeEscaper escapes LIKE wildcards so search text matches literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// MovieRepository implements the repositories.MovieRepository interface
type MovieRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *DB, logger *zap.Logger) repositories.MovieRepository {
	return &MovieRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMovie(row rowScanner) (*models.Movie, error) {
	m := &models.Movie{}
	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.Slug,
		&m.Description,
		&m.Type,
		&m.Year,
		&m.Country,
		pq.Array(&m.Categories),
		pq.Array(&m.Actors),
		&m.Director,
		&m.Poster,
		&m.Backdrop,
		&m.VideoURL,
		&m.Trailer,
		&m.Seasons,
		&m.TotalEpisodes,
		&m.IsPublished,
		&m.IsHero,
		&m.ViewCount,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if m.Categories == nil {
		m.Categories = []string{}
	}
	if m.Actors == nil {
		m.Actors = []string{}
	}
	return m, nil
}

// Create inserts a new movie
func (r *MovieRepository) Create(ctx context.Context, movie *models.Movie) error {
	query := `
		INSERT INTO movies (` + movieColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		movie.ID,
		movie.Title,
		movie.Slug,
		movie.Description,
		movie.Type,
		movie.Year,
		movie.Country,
		pq.Array(movie.Categories),
		pq.Array(movie.Actors),
		movie.Director,
		movie.Poster,
		movie.Backdrop,
		movie.VideoURL,
		movie.Trailer,
		movie.Seasons,
		movie.TotalEpisodes,
		movie.IsPublished,
		movie.IsHero,
		movie.ViewCount,
		movie.CreatedAt,
		movie.UpdatedAt,
	)
	if err != nil {
		return translateError(err, "failed to create movie")
	}

	r.logger.Debug("movie created", zap.String("id", movie.ID.String()), zap.String("slug", movie.Slug))
	return nil
}

// GetByID retrieves a movie by ID
func (r *MovieRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`

	movie, err := scanMovie(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("movie %s", id))
	}
	return movie, nil
}

// GetBySlug retrieves a movie by slug
func (r *MovieRepository) GetBySlug(ctx context.Context, slug string) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE slug = $1`

	movie, err := scanMovie(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("movie with slug %q", slug))
	}
	return movie, nil
}

// buildMovieWhere turns a filter into a WHERE clause and its positional arguments
func buildMovieWhere(f repositories.MovieFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		p := next("%" + likeEscaper.Replace(f.Search) + "%")
		conds = append(conds, fmt.Sprintf(`(title ILIKE %s ESCAPE '\' OR description ILIKE %s ESCAPE '\')`, p, p))
	}
	if f.Actor != "" {
		conds = append(conds, next(f.Actor)+" = ANY(actors)")
	}
	if f.Category != "" {
		conds = append(conds, next(f.Category)+" = ANY(categories)")
	}
	if f.Country != "" {
		conds = append(conds, "country = "+next(f.Country))
	}
	if f.Year != 0 {
		conds = append(conds, "year = "+next(f.Year))
	}
	if f.Type != "" {
		conds = append(conds, "type = "+next(string(f.Type)))
	}
	if f.IsPublished != nil {
		conds = append(conds, "is_published = "+next(*f.IsPublished))
	}
	if f.HasBackdrop {
		conds = append(conds, "backdrop <> ''")
	}
	if !f.CreatedAfter.IsZero() {
		conds = append(conds, "created_at >= "+next(f.CreatedAfter))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of movies matching filter and the total match count
func (r *MovieRepository) List(ctx context.Context, filter repositories.MovieFilter) ([]*models.Movie, int64, error) {
	where, args := buildMovieWhere(filter)
	executor := GetExecutor(ctx, r.db)

	var total int64
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	sortBy := filter.SortBy
	if _, ok := movieSortColumns[sortBy]; !ok {
		sortBy = "created_at"
	}
	dir := "ASC"
	if filter.SortDesc {
		dir = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM movies%s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		movieColumns, where, sortBy, dir, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	movies := make([]*models.Movie, 0, filter.Limit)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating movies: %w", err)
	}

	return movies, total, nil
}

// Update overwrites the editable fields of a movie
func (r *MovieRepository) Update(ctx context.Context, movie *models.Movie) error {
	query := `
		UPDATE movies
		SET title = $2, slug = $3, description = $4, type = $5, year = $6, country = $7,
			categories = $8, actors = $9, director = $10, poster = $11, backdrop = $12,
			video_url = $13, trailer = $14, seasons = $15, total_episodes = $16,
			is_published = $17, is_hero = $18, updated_at = $19
		WHERE id = $1
	`

	movie.UpdatedAt = time.Now()
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		movie.ID,
		movie.Title,
		movie.Slug,
		movie.Description,
		movie.Type,
		movie.Year,
		movie.Country,
		pq.Array(movie.Categories),
		pq.Array(movie.Actors),
		movie.Director,
		movie.Poster,
		movie.Backdrop,
		movie.VideoURL,
		movie.Trailer,
		movie.Seasons,
		movie.TotalEpisodes,
		movie.IsPublished,
		movie.IsHero,
		movie.UpdatedAt,
	)
	if err != nil {
		return translateError(err, "failed to update movie")
	}
	return expectAffected(res, fmt.Sprintf("movie %s", movie.ID))
}

// Delete deletes a movie
func (r *MovieRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	if err := expectAffected(res, fmt.Sprintf("movie %s", id)); err != nil {
		return err
	}

	r.logger.Debug("movie deleted", zap.String("id", id.String()))
	return nil
}

// TogglePublished flips is_published and returns the updated movie
func (r *MovieRepository) TogglePublished(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	query := `
		UPDATE movies SET is_published = NOT is_published, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + movieColumns

	movie, err := scanMovie(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("movie %s", id))
	}
	return movie, nil
}

// SetHero sets the hero flag of a single movie
func (r *MovieRepository) SetHero(ctx context.Context, id uuid.UUID, hero bool) error {
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE movies SET is_hero = $2, updated_at = NOW() WHERE id = $1`, id, hero)
	if err != nil {
		return fmt.Errorf("failed to set hero: %w", err)
	}
	return expectAffected(res, fmt.Sprintf("movie %s", id))
}

// ClearHeroExcept unsets the hero flag on every movie except id
func (r *MovieRepository) ClearHeroExcept(ctx context.Context, id uuid.UUID) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE movies SET is_hero = false WHERE is_hero AND id <> $1`, id)
	if err != nil {
		return fmt.Errorf("failed to clear hero: %w", err)
	}
	return nil
}

// GetHero returns the published hero movie
func (r *MovieRepository) GetHero(ctx context.Context) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies
		WHERE is_hero AND is_published
		ORDER BY updated_at DESC
		LIMIT 1`

	movie, err := scanMovie(GetExecutor(ctx, r.db).QueryRowContext(ctx, query))
	if err != nil {
		return nil, translateError(err, "hero movie")
	}
	return movie, nil
}

// IncrementViews adds one view and returns the updated movie
func (r *MovieRepository) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	query := `
		UPDATE movies SET view_count = view_count + 1
		WHERE id = $1
		RETURNING ` + movieColumns

	movie, err := scanMovie(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("movie %s", id))
	}
	return movie, nil
}

// CountPublished counts published movies of the given type
func (r *MovieRepository) CountPublished(ctx context.Context, movieType models.MovieType) (int64, error) {
	var n int64
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movies WHERE is_published AND type = $1`, movieType).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", movieType, err)
	}
	return n, nil
}

// SumPublishedViews sums view counts over published movies
func (r *MovieRepository) SumPublishedViews(ctx context.Context) (int64, error) {
	var n int64
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(view_count), 0) FROM movies WHERE is_published`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to sum views: %w", err)
	}
	return n, nil
}

// Stats returns the admin dashboard counters
func (r *MovieRepository) Stats(ctx context.Context) (*models.MovieStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE type = 'movie'),
			COUNT(*) FILTER (WHERE type = 'series'),
			COUNT(*) FILTER (WHERE is_published),
			COUNT(*) FILTER (WHERE NOT is_published),
			COUNT(*) FILTER (WHERE is_hero),
			COALESCE(SUM(view_count), 0)
		FROM movies
	`

	s := &models.MovieStats{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query).Scan(
		&s.TotalMovies,
		&s.TotalSeries,
		&s.Published,
		&s.Unpublished,
		&s.Hero,
		&s.TotalViews,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute movie stats: %w", err)
	}
	return s, nil
}

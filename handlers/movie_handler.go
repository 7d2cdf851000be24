package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/middleware"
	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/services"
	"github.com/chillfilm/chillfilm-api/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// MovieService defines the catalog operations used by MovieHandler
type MovieService interface {
	List(ctx context.Context, opts services.MovieListOptions) (*services.MoviePage, error)
	Search(ctx context.Context, opts services.MovieListOptions) (*services.MoviePage, error)
	Latest(ctx context.Context, opts services.RailOptions) ([]*models.Movie, error)
	Hot(ctx context.Context, opts services.RailOptions) ([]*models.Movie, error)
	Featured(ctx context.Context, limit int) ([]*models.Movie, error)
	Ranking(ctx context.Context, period string, opts services.RailOptions) ([]*models.Movie, error)
	ByCategory(ctx context.Context, category string, opts services.MovieListOptions) (*services.MoviePage, error)
	Hero(ctx context.Context) (*models.Movie, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Movie, error)
	GetBySlug(ctx context.Context, slug string) (*models.Movie, error)
	RecordView(ctx context.Context, id uuid.UUID) (*models.Movie, error)
	Create(ctx context.Context, in services.MovieInput) (*models.Movie, error)
	Update(ctx context.Context, id uuid.UUID, in services.MovieInput) (*models.Movie, error)
	Delete(ctx context.Context, id uuid.UUID) error
	TogglePublish(ctx context.Context, id uuid.UUID) (*models.Movie, error)
	ToggleHero(ctx context.Context, id uuid.UUID) (*models.Movie, error)
	AdminStats(ctx context.Context) (*models.MovieStats, error)
	PublicStats(ctx context.Context) (*models.PublicStats, error)
}

// MovieHandler handles movie-related HTTP requests
type MovieHandler struct {
	movies      MovieService
	permissions rbac.Checker
	baseURL     string
	logger      *zap.Logger
}

// NewMovieHandler creates a new MovieHandler. baseURL prefixes relative media paths.
// Unpublished movies are only served to principals that may edit movies.
func NewMovieHandler(movies MovieService, permissions rbac.Checker, baseURL string, logger *zap.Logger) *MovieHandler {
	return &MovieHandler{
		movies:      movies,
		permissions: permissions,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// MovieFilters echoes the applied listing filters back to the client
type MovieFilters struct {
	Search    string `json:"search,omitempty"`
	Actor     string `json:"actor,omitempty"`
	Category  string `json:"category,omitempty"`
	Country   string `json:"country,omitempty"`
	Year      int    `json:"year,omitempty"`
	Type      string `json:"type,omitempty"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// HandleList handles GET /api/movies
func (h *MovieHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.movies.List(r.Context(), parseListOptions(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	resp := h.pageResponse(page)
	opts := page.Options
	resp.Filters = MovieFilters{
		Search:    opts.Search,
		Actor:     opts.Actor,
		Category:  opts.Category,
		Country:   opts.Country,
		Year:      opts.Year,
		Type:      string(opts.Type),
		SortBy:    opts.SortBy,
		SortOrder: opts.SortOrder,
	}
	writeOrLog(h.logger, utils.WriteJSON(w, http.StatusOK, resp))
}

// HandleSearch handles GET /api/movies/search?q=. The listing filters
// (category, country, year, type, paging) apply to the matches.
func (h *MovieHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	opts := parseListOptions(r)
	opts.Search = q

	page, err := h.movies.Search(r.Context(), opts)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	resp := h.pageResponse(page)
	resp.Message = fmt.Sprintf("Found %d results for %q", page.Total, q)
	resp.SearchQuery = q
	writeOrLog(h.logger, utils.WriteJSON(w, http.StatusOK, resp))
}

// HandleLatest handles GET /api/movies/latest?limit=&type=
func (h *MovieHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.Latest(r.Context(), parseRailOptions(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteOK(w, h.presentAll(movies)))
}

// HandleHot handles GET /api/movies/hot?limit=&type=
func (h *MovieHandler) HandleHot(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.Hot(r.Context(), parseRailOptions(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteOK(w, h.presentAll(movies)))
}

// HandleFeatured handles GET /api/movies/featured?limit=
func (h *MovieHandler) HandleFeatured(w http.ResponseWriter, r *http.Request) {
	movies, err := h.movies.Featured(r.Context(), queryInt(r.URL.Query().Get("limit"), 0))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteJSON(w, http.StatusOK, utils.Response{
		Success: true,
		Data:    h.presentAll(movies),
		Count:   len(movies),
	}))
}

// HandleRanking handles GET /api/movies/ranking?period=&limit=&type=
func (h *MovieHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	period := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("period")))
	movies, err := h.movies.Ranking(r.Context(), period, parseRailOptions(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteOK(w, h.presentAll(movies)))
}

// HandleHero handles GET /api/movies/hero
func (h *MovieHandler) HandleHero(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.Hero(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteOK(w, movie.WithMediaBase(h.baseURL)))
}

// HandlePublicStats handles GET /api/movies/stats
func (h *MovieHandler) HandlePublicStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.movies.PublicStats(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteOK(w, stats))
}

// HandleAdminStats handles GET /api/movies/admin/stats
func (h *MovieHandler) HandleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.movies.AdminStats(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteOK(w, stats))
}

// HandleByCategory handles GET /api/movies/category/{category}
func (h *MovieHandler) HandleByCategory(w http.ResponseWriter, r *http.Request) {
	page, err := h.movies.ByCategory(r.Context(), chi.URLParam(r, "category"), parseListOptions(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteJSON(w, http.StatusOK, h.pageResponse(page)))
}

// HandleGetBySlug handles GET /api/movies/slug/{slug}
func (h *MovieHandler) HandleGetBySlug(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err == nil && !h.visible(r, movie) {
		err = services.ErrMovieNotFound
	}
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteOK(w, movie.WithMediaBase(h.baseURL)))
}

// HandleGet handles GET /api/movies/{id}
func (h *MovieHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	movie, err := h.movies.Get(r.Context(), id)
	if err == nil && !h.visible(r, movie) {
		err = services.ErrMovieNotFound
	}
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteOK(w, movie.WithMediaBase(h.baseURL)))
}

// HandleRecordView handles POST /api/movies/{id}/view
func (h *MovieHandler) HandleRecordView(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	movie, err := h.movies.RecordView(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteOK(w, map[string]int64{"viewCount": movie.ViewCount}))
}

// HandleCreate handles POST /api/movies
func (h *MovieHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	movie, err := h.movies.Create(r.Context(), in)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("movie created via API",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("movie_id", movie.ID.String()))
	writeOrLog(h.logger, utils.WriteCreated(w, "Movie created successfully", movie.WithMediaBase(h.baseURL)))
}

// HandleUpdate handles PUT /api/movies/{id}
func (h *MovieHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	movie, err := h.movies.Update(r.Context(), id, in)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteMessage(w, "Movie updated successfully", movie.WithMediaBase(h.baseURL)))
}

// HandleDelete handles DELETE /api/movies/{id}
func (h *MovieHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	if err := h.movies.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteMessage(w, "Movie deleted successfully", nil))
}

// HandleTogglePublish handles PATCH /api/movies/{id}/toggle
func (h *MovieHandler) HandleTogglePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	movie, err := h.movies.TogglePublish(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	msg := "Movie unpublished"
	if movie.IsPublished {
		msg = "Movie published"
	}
	writeOrLog(h.logger, utils.WriteMessage(w, msg, movie.WithMediaBase(h.baseURL)))
}

// HandleToggleHero handles PATCH /api/movies/{id}/toggle-hero
func (h *MovieHandler) HandleToggleHero(w http.ResponseWriter, r *http.Request) {
	id, ok := h.movieID(w, r)
	if !ok {
		return
	}
	movie, err := h.movies.ToggleHero(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	msg := "Movie removed from hero"
	if movie.IsHero {
		msg = "Movie set as hero"
	}
	writeOrLog(h.logger, utils.WriteMessage(w, msg, movie.WithMediaBase(h.baseURL)))
}

// visible reports whether the caller may see movie. Drafts need movies/edit.
func (h *MovieHandler) visible(r *http.Request, movie *models.Movie) bool {
	if movie.IsPublished {
		return true
	}
	p := middleware.GetPrincipalFromContext(r.Context())
	if p == nil || h.permissions == nil {
		return false
	}
	return h.permissions.Can(p.Role, rbac.ResourceMovies, rbac.ActionEdit)
}

func (h *MovieHandler) movieID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeOrLog(h.logger, utils.WriteBadRequest(w, "Invalid movie ID", nil))
		return uuid.Nil, false
	}
	return id, true
}

func (h *MovieHandler) decodeInput(w http.ResponseWriter, r *http.Request) (services.MovieInput, bool) {
	var in services.MovieInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		h.logger.Debug("invalid movie body",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		writeOrLog(h.logger, utils.WriteBadRequest(w, "Invalid JSON body", nil))
		return in, false
	}
	if err := utils.ValidateStruct(&in); err != nil {
		HandleValidationError(w, err, h.logger)
		return in, false
	}
	return in, true
}

func (h *MovieHandler) presentAll(movies []*models.Movie) []models.Movie {
	out := make([]models.Movie, len(movies))
	for i, m := range movies {
		out[i] = m.WithMediaBase(h.baseURL)
	}
	return out
}

func (h *MovieHandler) pageResponse(page *services.MoviePage) utils.Response {
	return utils.Response{
		Success:    true,
		Data:       h.presentAll(page.Movies),
		Pagination: utils.NewPagination(page.Options.Page, page.Options.Limit, page.Total),
	}
}

// parseListOptions reads the listing query parameters. isPublished defaults to
// true; "all" lifts the filter.
func parseListOptions(r *http.Request) services.MovieListOptions {
	q := r.URL.Query()
	opts := services.MovieListOptions{
		Page:      queryInt(q.Get("page"), 1),
		Limit:     queryInt(q.Get("limit"), 0),
		Search:    q.Get("search"),
		Actor:     strings.TrimSpace(q.Get("actor")),
		Category:  strings.TrimSpace(q.Get("category")),
		Country:   strings.TrimSpace(q.Get("country")),
		Year:      queryInt(q.Get("year"), 0),
		SortBy:    q.Get("sortBy"),
		SortOrder: strings.ToLower(q.Get("sortOrder")),
	}

	opts.Type = parseMovieType(q.Get("type"))

	published := true
	switch raw := strings.ToLower(q.Get("isPublished")); raw {
	case "all":
	case "false", "0":
		published = false
		opts.IsPublished = &published
	default:
		opts.IsPublished = &published
	}
	return opts
}

// parseRailOptions reads limit and type for the homepage rails
func parseRailOptions(r *http.Request) services.RailOptions {
	q := r.URL.Query()
	return services.RailOptions{
		Limit: queryInt(q.Get("limit"), 0),
		Type:  parseMovieType(q.Get("type")),
	}
}

// parseMovieType drops unknown types so they act as no filter
func parseMovieType(raw string) models.MovieType {
	switch t := models.MovieType(raw); t {
	case models.MovieTypeMovie, models.MovieTypeSeries:
		return t
	}
	return ""
}

func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

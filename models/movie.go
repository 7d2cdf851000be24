package models

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MovieType distinguishes single films from series
type MovieType string

const (
	MovieTypeMovie  MovieType = "movie"
	MovieTypeSeries MovieType = "series"
)

// Movie is a catalog entry. Media fields hold paths relative to the public
// base URL unless they are already absolute.
type Movie struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Slug          string    `json:"slug" db:"slug"`
	Description   string    `json:"description" db:"description"`
	Type          MovieType `json:"type" db:"type"`
	Year          int       `json:"year,omitempty" db:"year"`
	Country       string    `json:"country,omitempty" db:"country"`
	Categories    []string  `json:"categories" db:"categories"`
	Actors        []string  `json:"actors" db:"actors"`
	Director      string    `json:"director,omitempty" db:"director"`
	Poster        string    `json:"poster,omitempty" db:"poster"`
	Backdrop      string    `json:"backdrop,omitempty" db:"backdrop"`
	VideoURL      string    `json:"videoUrl,omitempty" db:"video_url"`
	Trailer       string    `json:"trailer,omitempty" db:"trailer"`
	Seasons       int       `json:"seasons,omitempty" db:"seasons"`
	TotalEpisodes int       `json:"totalEpisodes,omitempty" db:"total_episodes"`
	IsPublished   bool      `json:"isPublished" db:"is_published"`
	IsHero        bool      `json:"isHero" db:"is_hero"`
	ViewCount     int64     `json:"viewCount" db:"view_count"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the Movie model
func (Movie) TableName() string {
	return "movies"
}

// NewMovie creates a published movie with a slug derived from the title
func NewMovie(title string, movieType MovieType) *Movie {
	now := time.Now()
	if movieType == "" {
		movieType = MovieTypeMovie
	}
	return &Movie{
		ID:          uuid.New(),
		Title:       title,
		Slug:        Slugify(title),
		Type:        movieType,
		Categories:  []string{},
		Actors:      []string{},
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithMediaBase returns a copy whose media paths are absolute URLs under baseURL
func (m Movie) WithMediaBase(baseURL string) Movie {
	m.Poster = PublicURL(baseURL, m.Poster)
	m.Backdrop = PublicURL(baseURL, m.Backdrop)
	m.VideoURL = PublicURL(baseURL, m.VideoURL)
	return m
}

// PublicURL joins path onto baseURL. Empty paths and paths that are already
// absolute (http or https) are returned unchanged.
func PublicURL(baseURL, path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	base := strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s, strips diacritics and collapses every run of
// non-alphanumerics into a dash.
func Slugify(s string) string {
	folded := strings.NewReplacer("đ", "d", "Đ", "d").Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, folded); err == nil {
		folded = stripped
	}
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(folded)), "-")
	return strings.Trim(slug, "-")
}

// MovieStats are the admin dashboard counters
type MovieStats struct {
	TotalMovies int64 `json:"totalMovies"`
	TotalSeries int64 `json:"totalSeries"`
	Published   int64 `json:"published"`
	Unpublished int64 `json:"unpublished"`
	Hero        int64 `json:"hero"`
	TotalViews  int64 `json:"totalViews"`
}

// PublicStats are the counters shown on the landing page
type PublicStats struct {
	TotalMovies int64 `json:"totalMovies"`
	TotalSeries int64 `json:"totalSeries"`
	TotalViews  int64 `json:"totalViews"`
	TotalUsers  int64 `json:"totalUsers"`
}

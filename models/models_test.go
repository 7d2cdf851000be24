package models

import (
	"encoding/json"
	"testing"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMovie(t *testing.T) {
	movie := NewMovie("Spirited Away", "")

	assert.NotEqual(t, uuid.Nil, movie.ID)
	assert.Equal(t, "spirited-away", movie.Slug)
	assert.Equal(t, MovieTypeMovie, movie.Type)
	assert.True(t, movie.IsPublished)
	assert.False(t, movie.IsHero)
	assert.NotNil(t, movie.Categories)
	assert.NotNil(t, movie.Actors)
	assert.Equal(t, movie.CreatedAt, movie.UpdatedAt)
	assert.Equal(t, "movies", movie.TableName())
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Matrix", "the-matrix"},
		{"  Spider-Man: No Way Home  ", "spider-man-no-way-home"},
		{"Bố Già", "bo-gia"},
		{"Đất Rừng Phương Nam", "dat-rung-phuong-nam"},
		{"2001: A Space Odyssey!!", "2001-a-space-odyssey"},
		{"---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{"relative with slash", "https://api.example.com", "/uploads/movies/a.jpg", "https://api.example.com/uploads/movies/a.jpg"},
		{"relative without slash", "https://api.example.com/", "uploads/a.jpg", "https://api.example.com/uploads/a.jpg"},
		{"already absolute", "https://api.example.com", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"empty path", "https://api.example.com", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicURL(tt.base, tt.path))
		})
	}
}

func TestMovie_WithMediaBase(t *testing.T) {
	movie := Movie{Poster: "/p.jpg", Backdrop: "http://cdn/b.jpg", VideoURL: "v.mp4"}

	mapped := movie.WithMediaBase("https://api.example.com")

	assert.Equal(t, "https://api.example.com/p.jpg", mapped.Poster)
	assert.Equal(t, "http://cdn/b.jpg", mapped.Backdrop)
	assert.Equal(t, "https://api.example.com/v.mp4", mapped.VideoURL)
	// original untouched
	assert.Equal(t, "/p.jpg", movie.Poster)
}

func TestMovie_JSONUsesCamelCase(t *testing.T) {
	movie := NewMovie("Up", MovieTypeMovie)
	movie.ViewCount = 7

	data, err := json.Marshal(movie)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, true, raw["isPublished"])
	assert.Equal(t, float64(7), raw["viewCount"])
	assert.Contains(t, raw, "createdAt")
}

func TestNewUser(t *testing.T) {
	user := NewUser("viewer@example.com", "Viewer")

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, rbac.RoleUser, user.Role)
	assert.False(t, user.IsBanned)
	assert.Equal(t, "users", user.TableName())
}

func TestUser_EffectiveRole(t *testing.T) {
	assert.Equal(t, rbac.RoleUser, (&User{}).EffectiveRole())
	assert.Equal(t, rbac.RoleModerator, (&User{Role: rbac.RoleModerator}).EffectiveRole())
}

func TestNewSetting(t *testing.T) {
	setting := NewSetting("siteTitle", json.RawMessage(`"ChillFilm"`))

	assert.Equal(t, "siteTitle", setting.Key)
	assert.JSONEq(t, `"ChillFilm"`, string(setting.Value))
	assert.False(t, setting.UpdatedAt.IsZero())
	assert.Equal(t, "settings", setting.TableName())
}

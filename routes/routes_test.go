package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chillfilm/chillfilm-api/app"
	"github.com/chillfilm/chillfilm-api/auth"
	"github.com/chillfilm/chillfilm-api/config"
	"github.com/chillfilm/chillfilm-api/repositories/postgres"
	"github.com/chillfilm/chillfilm-api/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "routes-test-secret"

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		BaseURL:     "http://localhost:10000",
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second},
		Auth:        config.AuthConfig{JWTSecret: testSecret},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		RateLimit:   config.RateLimitConfig{ViewRequestsPerMinute: 2},
		Observability: config.ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}

func setupRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	logger := zap.NewNop()
	factory := postgres.NewRepositoryFactoryFromDB(postgres.Wrap(sqlDB, logger), logger)
	deps := app.Build(testConfig(), factory, logger)
	t.Cleanup(func() {
		mock.ExpectClose()
		_ = deps.Close(context.Background())
	})
	return SetupRoutes(deps), mock
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, h http.Handler, method, path, bearer, body string) (*httptest.ResponseRecorder, utils.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.RemoteAddr = "203.0.113.7:4242"
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp utils.Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestRoutes_Health(t *testing.T) {
	h, _ := setupRouter(t)

	w, resp := do(t, h, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Backend ChillFilm API is running", resp.Message)

	w, _ = do(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRoutes_NotFound(t *testing.T) {
	h, _ := setupRouter(t)

	w, resp := do(t, h, http.MethodGet, "/api/episodes", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Route GET /api/episodes not found", resp.Message)
}

func TestRoutes_RBACMe(t *testing.T) {
	h, _ := setupRouter(t)

	t.Run("requires authentication", func(t *testing.T) {
		w, resp := do(t, h, http.MethodGet, "/api/rbac/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not authorized, no token", resp.Message)
	})

	t.Run("rejects bad tokens", func(t *testing.T) {
		w, resp := do(t, h, http.MethodGet, "/api/rbac/me", "not-a-jwt", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not authorized, token failed", resp.Message)
	})

	t.Run("moderator", func(t *testing.T) {
		w, resp := do(t, h, http.MethodGet, "/api/rbac/me", token(t, "moderator"), "")
		require.Equal(t, http.StatusOK, w.Code)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "moderator", data["role"])
		assert.IsType(t, []interface{}{}, data["permissions"])
	})

	t.Run("superadmin", func(t *testing.T) {
		w, resp := do(t, h, http.MethodGet, "/api/rbac/me", token(t, "superadmin"), "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "all", resp.Data.(map[string]interface{})["permissions"])
	})
}

func TestRoutes_MovieGuards(t *testing.T) {
	h, _ := setupRouter(t)

	t.Run("create without token", func(t *testing.T) {
		w, _ := do(t, h, http.MethodPost, "/api/movies", "", `{"title":"X"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("user cannot create", func(t *testing.T) {
		w, resp := do(t, h, http.MethodPost, "/api/movies", token(t, "user"), `{"title":"X"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, resp.Success)
	})

	t.Run("moderator cannot delete", func(t *testing.T) {
		w, _ := do(t, h, http.MethodDelete, "/api/movies/"+uuid.NewString(), token(t, "moderator"), "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("moderator reaches edit handler", func(t *testing.T) {
		w, resp := do(t, h, http.MethodPut, "/api/movies/not-a-uuid", token(t, "moderator"), `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid movie ID", resp.Message)
	})

	t.Run("admin stats require admin", func(t *testing.T) {
		w, _ := do(t, h, http.MethodGet, "/api/movies/admin/stats", token(t, "moderator"), "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin reaches create handler", func(t *testing.T) {
		w, resp := do(t, h, http.MethodPost, "/api/movies", token(t, "admin"), `{"title":"X","type":"cartoon"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Validation failed", resp.Message)
	})
}

func TestRoutes_PublicSearchValidation(t *testing.T) {
	h, _ := setupRouter(t)

	w, resp := do(t, h, http.MethodGet, "/api/movies/search?q=%20a%20", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Search query must be at least 2 characters", resp.Message)
}

func TestRoutes_FeaturedAndRanking(t *testing.T) {
	h, mock := setupRouter(t)

	t.Run("featured", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM movies WHERE is_published = $1 AND backdrop <> ''")).
			WithArgs(true).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta("backdrop <> '' ORDER BY view_count DESC, id LIMIT $2 OFFSET $3")).
			WithArgs(true, 10, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w, resp := do(t, h, http.MethodGet, "/api/movies/featured", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ranking rejects unknown periods", func(t *testing.T) {
		w, resp := do(t, h, http.MethodGet, "/api/movies/ranking?period=decade", "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid ranking period", resp.Message)
	})
}

func TestRoutes_DraftVisibility(t *testing.T) {
	h, mock := setupRouter(t)
	id := uuid.New()
	columns := []string{
		"id", "title", "slug", "description", "type", "year", "country", "categories", "actors",
		"director", "poster", "backdrop", "video_url", "trailer", "seasons", "total_episodes",
		"is_published", "is_hero", "view_count", "created_at", "updated_at",
	}
	expectDraft := func() {
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM movies WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				id.String(), "Draft", "draft", "", "movie", 2026, "", "{}", "{}",
				"", "", "", "", "", 0, 0,
				false, false, 0, now, now,
			))
	}

	expectDraft()
	w, _ := do(t, h, http.MethodGet, "/api/movies/"+id.String(), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	expectDraft()
	w, _ = do(t, h, http.MethodGet, "/api/movies/"+id.String(), token(t, "user"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	expectDraft()
	w, resp := do(t, h, http.MethodGet, "/api/movies/"+id.String(), token(t, "moderator"), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp.Data.(map[string]interface{})["isPublished"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_ViewRateLimit(t *testing.T) {
	h, _ := setupRouter(t)
	path := "/api/movies/not-a-uuid/view"

	for i := 0; i < 2; i++ {
		w, _ := do(t, h, http.MethodPost, path, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	w, resp := do(t, h, http.MethodPost, path, "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, resp.Success)
}

func TestRoutes_UserGuards(t *testing.T) {
	h, _ := setupRouter(t)

	w, _ := do(t, h, http.MethodGet, "/api/users", token(t, "user"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, h, http.MethodPatch, "/api/users/"+uuid.NewString()+"/role", token(t, "moderator"), `{"role":"admin"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := do(t, h, http.MethodPatch, "/api/users/bad/ban", token(t, "moderator"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid user ID", resp.Message)
}

func TestRoutes_Settings(t *testing.T) {
	h, mock := setupRouter(t)

	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
		AddRow("site_name", []byte(`"ChillFilm"`), time.Now())
	mock.ExpectQuery("SELECT key, value, updated_at FROM settings").WillReturnRows(rows)

	w, resp := do(t, h, http.MethodGet, "/api/settings", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ChillFilm", resp.Data.(map[string]interface{})["site_name"])

	// served from cache
	w, _ = do(t, h, http.MethodGet, "/api/settings", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec("INSERT INTO settings").WillReturnResult(sqlmock.NewResult(0, 1))
	w, _ = do(t, h, http.MethodPut, "/api/settings/site_name", token(t, "admin"), `{"value":"x"}`)
	assert.Equal(t, http.StatusOK, w.Code, "admin passes the superadmin guard")

	w, _ = do(t, h, http.MethodPut, "/api/settings/site_name", token(t, "moderator"), `{"value":"x"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_Metrics(t *testing.T) {
	h, _ := setupRouter(t)

	w, _ := do(t, h, http.MethodPost, "/api/movies", token(t, "user"), `{"title":"X"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chillfilm_http_requests_total")
	assert.Contains(t, w.Body.String(), "chillfilm_authz_decisions_total")
}

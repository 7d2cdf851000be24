package routes

import (
	"fmt"
	"net/http"
	"time"

	"github.com/chillfilm/chillfilm-api/app"
	"github.com/chillfilm/chillfilm-api/internal/rbac"
	appmiddleware "github.com/chillfilm/chillfilm-api/middleware"
	"github.com/chillfilm/chillfilm-api/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	cfg := deps.Config
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}
	r.Use(deps.Metrics.Instrument)

	r.Use(secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      !cfg.IsProduction(),
	}).Handler)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/", deps.HealthHandler.HandleRoot)
	r.Get("/healthz", deps.HealthHandler.HandleHealth)
	r.Get("/readyz", deps.HealthHandler.HandleReadiness)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	requireAuth := deps.AuthMiddleware.RequireAuth
	guards := deps.RBACMiddleware

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/logout", deps.AuthHandler.HandleLogout)
			r.With(requireAuth).Get("/me", deps.AuthHandler.HandleMe)
		})

		r.With(requireAuth).Get("/rbac/me", deps.RBACHandler.HandleMe)

		r.Route("/movies", func(r chi.Router) {
			movies := deps.MovieHandler

			// Public catalog
			r.Get("/", movies.HandleList)
			r.Get("/search", movies.HandleSearch)
			r.Get("/latest", movies.HandleLatest)
			r.Get("/hot", movies.HandleHot)
			r.Get("/featured", movies.HandleFeatured)
			r.Get("/ranking", movies.HandleRanking)
			r.Get("/hero", movies.HandleHero)
			r.Get("/stats", movies.HandlePublicStats)
			r.Get("/category/{category}", movies.HandleByCategory)

			// Drafts are visible to editors
			r.With(deps.AuthMiddleware.OptionalAuth).Get("/slug/{slug}", movies.HandleGetBySlug)
			r.With(deps.AuthMiddleware.OptionalAuth).Get("/{id}", movies.HandleGet)
			r.With(viewLimiter(cfg.RateLimit.ViewRequestsPerMinute)).Post("/{id}/view", movies.HandleRecordView)

			// Catalog management
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.With(guards.RequireAdmin).Get("/admin/stats", movies.HandleAdminStats)
				r.With(guards.RequirePermission(rbac.ResourceMovies, rbac.ActionCreate)).Post("/", movies.HandleCreate)
				r.With(guards.RequirePermission(rbac.ResourceMovies, rbac.ActionEdit)).Put("/{id}", movies.HandleUpdate)
				r.With(guards.RequirePermission(rbac.ResourceMovies, rbac.ActionDelete)).Delete("/{id}", movies.HandleDelete)
				r.With(guards.RequirePermission(rbac.ResourceMovies, rbac.ActionEdit)).Patch("/{id}/toggle", movies.HandleTogglePublish)
				r.With(guards.RequirePermission(rbac.ResourceMovies, rbac.ActionEdit)).Patch("/{id}/toggle-hero", movies.HandleToggleHero)
			})
		})

		r.Route("/users", func(r chi.Router) {
			users := deps.UserHandler
			r.Use(requireAuth)
			r.With(guards.RequirePermission(rbac.ResourceUsers, rbac.ActionView)).Get("/", users.HandleList)
			r.With(guards.RequirePermission(rbac.ResourceUsers, rbac.ActionView)).Get("/{id}", users.HandleGet)
			r.With(guards.RequirePermission(rbac.ResourceUsers, rbac.ActionBan)).Patch("/{id}/ban", users.HandleToggleBan)
			r.With(guards.RequirePermission(rbac.ResourceUsers, rbac.ActionDelete)).Delete("/{id}", users.HandleDelete)
			r.With(guards.RequireSuperAdmin).Patch("/{id}/role", users.HandleUpdateRole)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", deps.SettingHandler.HandleList)
			r.With(requireAuth, guards.RequireSuperAdmin).Put("/{key}", deps.SettingHandler.HandlePut)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path), nil)
	})

	return r
}

// viewLimiter bounds view recording per client IP
func viewLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			_ = utils.WriteTooManyRequests(w, "Too many requests, please try again later")
		}),
	)
}

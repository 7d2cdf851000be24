package auth

import (
	"errors"
	"net/http"

	"github.com/chillfilm/chillfilm-api/middleware"
	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/chillfilm/chillfilm-api/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler serves the session endpoints that do not issue tokens
type Handler struct {
	users        UserLookup
	secureCookie bool
	logger       *zap.Logger
}

// NewHandler creates a new auth handler. users may be nil, in which case /me
// answers from the token claims alone.
func NewHandler(users UserLookup, secureCookie bool, logger *zap.Logger) *Handler {
	return &Handler{
		users:        users,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// HandleLogout clears the token cookie
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	_ = utils.WriteMessage(w, "Logged out successfully", nil)
}

// HandleMe returns the authenticated account
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal := middleware.GetPrincipalFromContext(ctx)
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "Not authorized, no token")
		return
	}

	if h.users == nil {
		_ = utils.WriteOK(w, principal)
		return
	}

	id, err := uuid.Parse(principal.UserID)
	if err != nil {
		_ = utils.WriteUnauthorized(w, "Not authorized, token failed")
		return
	}

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = utils.WriteNotFound(w, "User not found")
			return
		}
		h.logger.Error("failed to load current user",
			zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, user)
}

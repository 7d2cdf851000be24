package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/chillfilm/chillfilm-api/utils"
	"go.uber.org/zap"
)

// TokenValidator validates bearer tokens issued by the authentication service
type TokenValidator interface {
	// ValidateToken validates a token and returns the principal it identifies
	ValidateToken(ctx context.Context, token string) (*Principal, error)
}

// AuthMiddleware attaches the authenticated principal to requests
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// TokenCookieName is the cookie fallback; the Authorization header takes precedence
const TokenCookieName = "token"

// RequireAuth rejects requests without a valid token and stores the Principal otherwise
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractToken(r)
		if token == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Not authorized, no token")
			return
		}

		principal, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Not authorized, token failed")
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", principal.UserID),
			zap.String("role", principal.Role.String()))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// OptionalAuth attaches the principal when a valid token is present and lets
// anonymous requests through untouched.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		token := extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Debug("ignoring invalid optional token",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// extractToken reads the Authorization header ("Bearer TOKEN"), falling back to the token cookie
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

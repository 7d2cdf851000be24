package middleware

import (
	"context"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/go-chi/chi/v5/middleware"
)

// Context key type to avoid collisions
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal
	PrincipalKey contextKey = "principal"
)

// Principal is the authenticated caller attached to a request by RequireAuth.
// Role may be empty when the token carried none.
type Principal struct {
	UserID string    `json:"id"`
	Email  string    `json:"email,omitempty"`
	Role   rbac.Role `json:"role"`
}

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// GetPrincipalFromContext retrieves the authenticated principal from context
func GetPrincipalFromContext(ctx context.Context) *Principal {
	if val := ctx.Value(PrincipalKey); val != nil {
		if p, ok := val.(*Principal); ok {
			return p
		}
	}
	return nil
}

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

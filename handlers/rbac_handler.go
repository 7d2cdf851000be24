package handlers

import (
	"net/http"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/middleware"
	"github.com/chillfilm/chillfilm-api/utils"
	"go.uber.org/zap"
)

// RolePermissions is the body of GET /api/rbac/me
type RolePermissions struct {
	Role        rbac.Role          `json:"role"`
	Permissions rbac.PermissionSet `json:"permissions"`
}

// RBACHandler lets a caller introspect its own permissions
type RBACHandler struct {
	checker rbac.Checker
	logger  *zap.Logger
}

// NewRBACHandler creates a new RBACHandler
func NewRBACHandler(checker rbac.Checker, logger *zap.Logger) *RBACHandler {
	return &RBACHandler{
		checker: checker,
		logger:  logger,
	}
}

// HandleMe handles GET /api/rbac/me. A principal without a role is reported as user.
func (h *RBACHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	role := rbac.RoleUser
	if p := middleware.GetPrincipalFromContext(r.Context()); p != nil && p.Role != "" {
		role = p.Role
	}

	writeOrLog(h.logger, utils.WriteOK(w, RolePermissions{
		Role:        role,
		Permissions: h.checker.GetPermissions(role),
	}))
}

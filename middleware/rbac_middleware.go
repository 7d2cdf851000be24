package middleware

import (
	"fmt"
	"net/http"

	"github.com/chillfilm/chillfilm-api/internal/observability"
	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/utils"
	"go.uber.org/zap"
)

// Guard names used in logs and the authz decision metric
const (
	guardPermission = "permission"
	guardAdmin      = "admin"
	guardSuperAdmin = "superadmin"
)

// Decision outcomes recorded by the guards
const (
	OutcomeAuthorized      = "authorized"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeError           = "error"
)

const (
	msgNoRole        = "Unauthorized - No role found"
	msgAdminRequired = "Admin role required"
	msgSuperRequired = "Superadmin role required"
	msgCheckFailed   = "Failed to check permissions"
	msgPermissionFmt = "You do not have permission to %s %s"
)

// superAdminRoles is the fixed allow set of RequireSuperAdmin. Legacy "admin"
// accounts are treated as superadmins; the set does not follow the table.
var superAdminRoles = map[rbac.Role]struct{}{
	rbac.RoleSuperAdmin: {},
	rbac.RoleAdmin:      {},
}

// RBACMiddleware enforces role-based permissions on routes. It must run after
// AuthMiddleware.RequireAuth so that the principal is present in the context.
type RBACMiddleware struct {
	checker rbac.Checker
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewRBACMiddleware creates a new RBACMiddleware. metrics may be nil.
func NewRBACMiddleware(checker rbac.Checker, logger *zap.Logger, metrics *observability.Metrics) *RBACMiddleware {
	return &RBACMiddleware{
		checker: checker,
		logger:  logger,
		metrics: metrics,
	}
}

// RequirePermission admits requests whose role may perform action on resource
func (m *RBACMiddleware) RequirePermission(resource rbac.Resource, action rbac.Action) func(http.Handler) http.Handler {
	denied := fmt.Sprintf(msgPermissionFmt, action, resource)
	return m.guard(guardPermission, denied, func(role rbac.Role) bool {
		return m.checker.Can(role, resource, action)
	}, zap.String("resource", string(resource)), zap.String("action", string(action)))
}

// RequireAdmin admits any administrative role
func (m *RBACMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.guard(guardAdmin, msgAdminRequired, m.checker.IsAdminRole)(next)
}

// RequireSuperAdmin admits only superadmin and legacy admin roles
func (m *RBACMiddleware) RequireSuperAdmin(next http.Handler) http.Handler {
	return m.guard(guardSuperAdmin, msgSuperRequired, func(role rbac.Role) bool {
		_, ok := superAdminRoles[role]
		return ok
	})(next)
}

// guard builds a middleware that decides once per request and then either calls
// next or writes a single rejection.
func (m *RBACMiddleware) guard(name, deniedMsg string, allow func(rbac.Role) bool, fields ...zap.Field) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			var role rbac.Role
			if p := GetPrincipalFromContext(ctx); p != nil {
				role = p.Role
			}

			logFields := append([]zap.Field{
				zap.String("request_id", requestID),
				zap.String("guard", name),
				zap.String("role", role.String()),
			}, fields...)

			if role == "" {
				m.logger.Warn("no role on request", logFields...)
				m.metrics.RecordAuthzDecision(name, OutcomeUnauthenticated)
				_ = utils.WriteUnauthorized(w, msgNoRole)
				return
			}

			allowed, err := evaluate(allow, role)
			if err != nil {
				m.logger.Error("permission check failed", append(logFields, zap.Error(err))...)
				m.metrics.RecordAuthzDecision(name, OutcomeError)
				_ = utils.WriteInternalServerError(w, msgCheckFailed)
				return
			}

			if !allowed {
				m.logger.Warn("permission denied", logFields...)
				m.metrics.RecordAuthzDecision(name, OutcomeForbidden)
				_ = utils.WriteForbidden(w, deniedMsg)
				return
			}

			m.logger.Debug("permission granted", logFields...)
			m.metrics.RecordAuthzDecision(name, OutcomeAuthorized)
			next.ServeHTTP(w, r)
		})
	}
}

// evaluate runs allow and converts a panic into an error. Panics raised by the
// downstream handler are not caught here.
func evaluate(allow func(rbac.Role) bool, role rbac.Role) (allowed bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			allowed = false
			err = fmt.Errorf("panic during permission check: %v", rec)
		}
	}()
	return allow(role), nil
}

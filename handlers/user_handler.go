package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/middleware"
	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/services"
	"github.com/chillfilm/chillfilm-api/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService defines the account administration operations used by UserHandler
type UserService interface {
	List(ctx context.Context, page, limit int) (*services.UserPage, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	ToggleBan(ctx context.Context, actorID, id uuid.UUID) (*models.User, error)
	UpdateRole(ctx context.Context, actorID, id uuid.UUID, role rbac.Role) (*models.User, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

// UserHandler handles user administration requests
type UserHandler struct {
	users  UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// UpdateRoleRequest is the body of PATCH /api/users/{id}/role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// HandleList handles GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.users.List(r.Context(), queryInt(q.Get("page"), 1), queryInt(q.Get("limit"), 0))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	users := page.Users
	if users == nil {
		users = []*models.User{}
	}
	writeOrLog(h.logger, utils.WritePage(w, users, utils.NewPagination(page.Page, page.Limit, page.Total)))
}

// HandleGet handles GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteOK(w, user))
}

// HandleToggleBan handles PATCH /api/users/{id}/ban
func (h *UserHandler) HandleToggleBan(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.users.ToggleBan(r.Context(), actorID, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	msg := "User unbanned"
	if user.IsBanned {
		msg = "User banned"
	}
	writeOrLog(h.logger, utils.WriteMessage(w, msg, user))
}

// HandleUpdateRole handles PATCH /api/users/{id}/role
func (h *UserHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeOrLog(h.logger, utils.WriteBadRequest(w, "Invalid JSON body", nil))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.UpdateRole(r.Context(), actorID, id, rbac.Role(req.Role))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteMessage(w, "Role updated successfully", user))
}

// HandleDelete handles DELETE /api/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.actorID(w, r)
	if !ok {
		return
	}
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), actorID, id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	writeOrLog(h.logger, utils.WriteMessage(w, "User deleted successfully", nil))
}

func (h *UserHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		writeOrLog(h.logger, utils.WriteBadRequest(w, "Invalid user ID", nil))
		return uuid.Nil, false
	}
	return id, true
}

// actorID resolves the caller's account ID for self-protection checks
func (h *UserHandler) actorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		writeOrLog(h.logger, utils.WriteUnauthorized(w, "Not authorized"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(principal.UserID)
	if err != nil {
		h.logger.Warn("principal id is not a UUID",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.String("user_id", principal.UserID))
		writeOrLog(h.logger, utils.WriteUnauthorized(w, "Not authorized, token failed"))
		return uuid.Nil, false
	}
	return id, true
}

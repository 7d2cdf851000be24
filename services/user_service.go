package services

import (
	"context"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/chillfilm/chillfilm-api/models"
	"github.com/chillfilm/chillfilm-api/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserPage is one page of the user listing
type UserPage struct {
	Users []*models.User
	Total int64
	Page  int
	Limit int
}

// UserService implements account administration
type UserService struct {
	users  repositories.UserRepository
	roles  *rbac.Table
	logger *zap.Logger
}

// NewUserService creates a new UserService. roles is the permission table whose
// role set bounds UpdateRole.
func NewUserService(users repositories.UserRepository, roles *rbac.Table, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		roles:  roles,
		logger: logger,
	}
}

// List returns one page of users, newest first
func (s *UserService) List(ctx context.Context, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	users, total, err := s.users.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, WrapInternal("failed to list users", err)
	}
	return &UserPage{Users: users, Total: total, Page: page, Limit: limit}, nil
}

// Get returns a user by ID
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, FromRepository(err, ErrUserNotFound, nil, "failed to load user")
	}
	return user, nil
}

// ToggleBan flips the banned flag of a user. Accounts cannot ban themselves.
func (s *UserService) ToggleBan(ctx context.Context, actorID, id uuid.UUID) (*models.User, error) {
	if actorID == id {
		return nil, NewDomainError(ErrorTypeForbidden, "You cannot ban yourself", nil)
	}

	user, err := s.users.ToggleBanned(ctx, id)
	if err != nil {
		return nil, FromRepository(err, ErrUserNotFound, nil, "failed to toggle ban")
	}
	return user, nil
}

// UpdateRole assigns role to a user. The role must be known to the permission table.
func (s *UserService) UpdateRole(ctx context.Context, actorID, id uuid.UUID, role rbac.Role) (*models.User, error) {
	role = rbac.ParseRole(role.String())
	if role == "" || !s.roles.Known(role) {
		return nil, NewDomainError(ErrUnknownRole.Type, ErrUnknownRole.Message, nil).
			WithDetail("role", "must be one of "+joinRoles(s.roles.Roles()))
	}
	if actorID == id {
		return nil, NewDomainError(ErrorTypeForbidden, "You cannot change your own role", nil)
	}

	user, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, FromRepository(err, ErrUserNotFound, nil, "failed to update role")
	}

	s.logger.Info("role assigned",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", id.String()),
		zap.String("role", role.String()))
	return user, nil
}

// Delete removes a user account
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return NewDomainError(ErrorTypeForbidden, "You cannot delete yourself", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return FromRepository(err, ErrUserNotFound, nil, "failed to delete user")
	}
	s.logger.Info("user deleted",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", id.String()))
	return nil
}

func joinRoles(roles []rbac.Role) string {
	out := ""
	for i, r := range roles {
		if i > 0 {
			out += ", "
		}
		out += r.String()
	}
	return out
}

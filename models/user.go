package models

import (
	"time"

	"github.com/chillfilm/chillfilm-api/internal/rbac"
	"github.com/google/uuid"
)

// User is an account of the streaming site. Credentials are owned by the
// authentication service and are not stored here.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      rbac.Role `json:"role" db:"role"`
	IsBanned  bool      `json:"isBanned" db:"is_banned"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User with the default role
func NewUser(email, name string) *User {
	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Role:      rbac.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EffectiveRole returns the stored role, falling back to user when none is set
func (u *User) EffectiveRole() rbac.Role {
	if u.Role == "" {
		return rbac.RoleUser
	}
	return u.Role
}

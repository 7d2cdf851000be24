package rbac

import "strings"

// Role classifies a principal's authority level.
type Role string

const (
	RoleUser       Role = "user"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// String returns the role identifier
func (r Role) String() string {
	return string(r)
}

// ParseRole trims a raw role claim. Case is preserved, so "ADMIN" is not "admin".
// It does not check membership in any table.
func ParseRole(raw string) Role {
	return Role(strings.TrimSpace(raw))
}

// Resource names a protectable collection of operations.
type Resource string

const (
	ResourceMovies     Resource = "movies"
	ResourceEpisodes   Resource = "episodes"
	ResourceActors     Resource = "actors"
	ResourceCategories Resource = "categories"
	ResourceCountries  Resource = "countries"
	ResourceReviews    Resource = "reviews"
	ResourceBanners    Resource = "banners"
	ResourceUsers      Resource = "users"
	ResourceSettings   Resource = "settings"
)

// Action names an operation class on a resource.
type Action string

const (
	ActionView     Action = "view"
	ActionCreate   Action = "create"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionBan      Action = "ban"
	ActionModerate Action = "moderate"
)

// Grant is an allowed (resource, action) pair.
type Grant struct {
	Resource Resource `json:"resource"`
	Action   Action   `json:"action"`
}

// String returns "resource:action"
func (g Grant) String() string {
	return string(g.Resource) + ":" + string(g.Action)
}

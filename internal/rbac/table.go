package rbac

import "sort"

// Table is the immutable role -> grants mapping. Build it with NewTable or
// DefaultTable; there is no way to modify it afterwards.
type Table struct {
	grants   map[Role]map[Grant]struct{}
	elevated map[Role]struct{}
}

// NewTable builds a table from the given grants. Roles listed in elevated bypass
// the grant lookup entirely. Input slices are copied.
func NewTable(grants map[Role][]Grant, elevated ...Role) *Table {
	t := &Table{
		grants:   make(map[Role]map[Grant]struct{}, len(grants)),
		elevated: make(map[Role]struct{}, len(elevated)),
	}
	for role, list := range grants {
		set := make(map[Grant]struct{}, len(list))
		for _, g := range list {
			set[g] = struct{}{}
		}
		t.grants[role] = set
	}
	for _, role := range elevated {
		t.elevated[role] = struct{}{}
	}
	return t
}

// DefaultTable returns the catalog's compiled-in permission table.
func DefaultTable() *Table {
	userGrants := []Grant{
		{ResourceMovies, ActionView},
		{ResourceEpisodes, ActionView},
		{ResourceActors, ActionView},
		{ResourceCategories, ActionView},
		{ResourceCountries, ActionView},
		{ResourceBanners, ActionView},
		{ResourceReviews, ActionView},
		{ResourceReviews, ActionCreate},
	}

	moderatorGrants := append([]Grant{}, userGrants...)
	moderatorGrants = append(moderatorGrants,
		Grant{ResourceMovies, ActionEdit},
		Grant{ResourceEpisodes, ActionEdit},
		Grant{ResourceReviews, ActionEdit},
		Grant{ResourceReviews, ActionDelete},
		Grant{ResourceReviews, ActionModerate},
		Grant{ResourceUsers, ActionView},
		Grant{ResourceUsers, ActionBan},
	)

	return NewTable(map[Role][]Grant{
		RoleUser:      userGrants,
		RoleModerator: moderatorGrants,
	}, RoleAdmin, RoleSuperAdmin)
}

// Has reports whether role holds the grant in the table. Elevated roles are not
// special-cased here.
func (t *Table) Has(role Role, g Grant) bool {
	set, ok := t.grants[role]
	if !ok {
		return false
	}
	_, ok = set[g]
	return ok
}

// IsElevated reports whether role bypasses grant lookups.
func (t *Table) IsElevated(role Role) bool {
	_, ok := t.elevated[role]
	return ok
}

// Grants returns the role's grants sorted by resource, then action.
// The result is a fresh slice; unknown roles yield an empty, non-nil slice.
func (t *Table) Grants(role Role) []Grant {
	set := t.grants[role]
	out := make([]Grant, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// Known reports whether role appears in the table, either with grants or as elevated.
func (t *Table) Known(role Role) bool {
	if _, ok := t.grants[role]; ok {
		return true
	}
	return t.IsElevated(role)
}

// Roles lists every role the table knows about, sorted.
func (t *Table) Roles() []Role {
	seen := make(map[Role]struct{}, len(t.grants)+len(t.elevated))
	for r := range t.grants {
		seen[r] = struct{}{}
	}
	for r := range t.elevated {
		seen[r] = struct{}{}
	}
	roles := make([]Role, 0, len(seen))
	for r := range seen {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

package rbac

// Checker is the read-only permission API consumed by the HTTP layer.
type Checker interface {
	Can(role Role, resource Resource, action Action) bool
	IsAdminRole(role Role) bool
	GetPermissions(role Role) PermissionSet
}

// Evaluator answers permission questions against an injected table.
type Evaluator struct {
	table *Table
}

var _ Checker = (*Evaluator)(nil)

// NewEvaluator creates an evaluator over table. A nil table behaves as an empty one.
func NewEvaluator(table *Table) *Evaluator {
	if table == nil {
		table = NewTable(nil)
	}
	return &Evaluator{table: table}
}

// Can reports whether role may perform action on resource. Elevated roles are always
// allowed; an empty or unknown role is never allowed.
func (e *Evaluator) Can(role Role, resource Resource, action Action) bool {
	if role == "" {
		return false
	}
	if e.table.IsElevated(role) {
		return true
	}
	return e.table.Has(role, Grant{Resource: resource, Action: action})
}

// IsAdminRole reports whether role is one of the table's administrative roles.
func (e *Evaluator) IsAdminRole(role Role) bool {
	if role == "" {
		return false
	}
	return e.table.IsElevated(role)
}

// GetPermissions resolves the permission set of role. Elevated roles get the "all"
// sentinel rather than an enumeration, so new resources need no table edits.
func (e *Evaluator) GetPermissions(role Role) PermissionSet {
	if role != "" && e.table.IsElevated(role) {
		return AllPermissions()
	}
	return PermissionSet{Grants: e.table.Grants(role)}
}

// Table exposes the underlying table for role validation.
func (e *Evaluator) Table() *Table {
	return e.table
}

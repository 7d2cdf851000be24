package rbac

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// allSentinel is the wire form of an unrestricted permission set.
const allSentinel = "all"

// PermissionSet is the resolved permissions of a role. Either All is set, or
// Grants lists the role's grants in a stable order.
type PermissionSet struct {
	All    bool
	Grants []Grant
}

// AllPermissions returns the sentinel set used for elevated roles.
func AllPermissions() PermissionSet {
	return PermissionSet{All: true}
}

// Contains reports whether the set allows the grant.
func (p PermissionSet) Contains(g Grant) bool {
	if p.All {
		return true
	}
	for _, have := range p.Grants {
		if have == g {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set allows nothing.
func (p PermissionSet) IsEmpty() bool {
	return !p.All && len(p.Grants) == 0
}

// MarshalJSON encodes the sentinel as "all" and everything else as a list.
func (p PermissionSet) MarshalJSON() ([]byte, error) {
	if p.All {
		return json.Marshal(allSentinel)
	}
	grants := p.Grants
	if grants == nil {
		grants = []Grant{}
	}
	return json.Marshal(grants)
}

// UnmarshalJSON accepts either "all" or a list of grants.
func (p *PermissionSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != allSentinel {
			return fmt.Errorf("rbac: unknown permission sentinel %q", s)
		}
		*p = AllPermissions()
		return nil
	}
	var grants []Grant
	if err := json.Unmarshal(data, &grants); err != nil {
		return err
	}
	if grants == nil {
		grants = []Grant{}
	}
	*p = PermissionSet{Grants: grants}
	return nil
}

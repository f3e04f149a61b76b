package enums

import "fmt"

// AdminRole represents a back-office permission level.
type AdminRole string

const (
	AdminRoleViewer     AdminRole = "viewer"
	AdminRoleEditor     AdminRole = "editor"
	AdminRoleAdmin      AdminRole = "admin"
	AdminRoleSuperAdmin AdminRole = "super_admin"
)

var adminRoleOrdinals = map[AdminRole]int{
	AdminRoleViewer:     1,
	AdminRoleEditor:     2,
	AdminRoleAdmin:      3,
	AdminRoleSuperAdmin: 4,
}

// String implements fmt.Stringer.
func (a AdminRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdminRole.
func (a AdminRole) IsValid() bool {
	_, ok := adminRoleOrdinals[a]
	return ok
}

// AtLeast reports whether the role meets or exceeds the required level.
// Unknown roles never satisfy any requirement.
func (a AdminRole) AtLeast(required AdminRole) bool {
	have, ok := adminRoleOrdinals[a]
	if !ok {
		return false
	}
	want, ok := adminRoleOrdinals[required]
	if !ok {
		return false
	}
	return have >= want
}

// ParseAdminRole converts raw input into an AdminRole.
func ParseAdminRole(value string) (AdminRole, error) {
	for candidate := range adminRoleOrdinals {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid admin role %q", value)
}

package enums

import "fmt"

// Role is the operator role carried in access tokens.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

var validRoles = []Role{RoleAdmin, RoleViewer}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	return isOneOf(r, validRoles)
}

// CanWrite reports whether the role may mutate carrier records.
func (r Role) CanWrite() bool {
	return r == RoleAdmin
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

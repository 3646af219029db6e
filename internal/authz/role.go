package authz

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles. Authorization decisions switch
// exhaustively on this type instead of comparing raw strings at call sites.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleTeacher    Role = "TEACHER"
	RoleStudent    Role = "STUDENT"
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleTeacher, RoleStudent}
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(value string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleTeacher, RoleStudent:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// RequiresApproval reports whether accounts with this role go through the
// registration approval workflow. Only self-registered students do; every
// other role is implicitly approved at creation.
func (r Role) RequiresApproval() bool {
	return r == RoleStudent
}

func (r Role) String() string {
	return string(r)
}

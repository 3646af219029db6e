package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	granted := map[Permission]bool{PermApproveStudents: true}

	cases := []struct {
		name  string
		actor Actor
		perm  Permission
		want  bool
	}{
		{"super admin passes without grants", Actor{ID: 1, Role: RoleSuperAdmin}, PermConfigureSystem, true},
		{"admin passes with granted permission", Actor{ID: 2, Role: RoleAdmin, Grants: granted}, PermApproveStudents, true},
		{"admin fails without grant", Actor{ID: 2, Role: RoleAdmin, Grants: granted}, PermDeleteStudents, false},
		{"admin fails with empty grid", Actor{ID: 3, Role: RoleAdmin}, PermViewStudents, false},
		{"teacher never passes", Actor{ID: 4, Role: RoleTeacher}, PermViewStudents, false},
		{"student never passes", Actor{ID: 5, Role: RoleStudent}, PermViewStudents, false},
		{"unknown permission fails even for super admin", Actor{ID: 1, Role: RoleSuperAdmin}, Permission("can_fly"), false},
		{"unknown role fails", Actor{ID: 6, Role: Role("JANITOR")}, PermViewStudents, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Allowed(tc.actor, tc.perm))
		})
	}
}

func TestCanViewUser(t *testing.T) {
	cases := []struct {
		name       string
		actor      Actor
		targetID   uint
		targetRole Role
		want       bool
	}{
		{"self is always visible", Actor{ID: 7, Role: RoleStudent}, 7, RoleStudent, true},
		{"super admin sees admins", Actor{ID: 1, Role: RoleSuperAdmin}, 2, RoleAdmin, true},
		{"admin sees students", Actor{ID: 2, Role: RoleAdmin}, 9, RoleStudent, true},
		{"admin sees teachers", Actor{ID: 2, Role: RoleAdmin}, 10, RoleTeacher, true},
		{"admin cannot see other admins", Actor{ID: 2, Role: RoleAdmin}, 3, RoleAdmin, false},
		{"admin cannot see super admins", Actor{ID: 2, Role: RoleAdmin}, 1, RoleSuperAdmin, false},
		{"student cannot see others", Actor{ID: 9, Role: RoleStudent}, 10, RoleStudent, false},
		{"teacher cannot see others", Actor{ID: 10, Role: RoleTeacher}, 9, RoleStudent, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CanViewUser(tc.actor, tc.targetID, tc.targetRole))
		})
	}
}

func TestVisibleRoles(t *testing.T) {
	roles, ok := VisibleRoles(Actor{Role: RoleSuperAdmin})
	require.True(t, ok)
	require.Nil(t, roles, "super admin is unrestricted")

	roles, ok = VisibleRoles(Actor{Role: RoleAdmin})
	require.True(t, ok)
	require.ElementsMatch(t, []Role{RoleTeacher, RoleStudent}, roles)

	_, ok = VisibleRoles(Actor{Role: RoleStudent})
	require.False(t, ok)

	_, ok = VisibleRoles(Actor{Role: RoleTeacher})
	require.False(t, ok)
}

func TestOwnsRecord(t *testing.T) {
	require.True(t, OwnsRecord(Actor{ID: 5}, 5))
	require.False(t, OwnsRecord(Actor{ID: 5}, 6))
	require.False(t, OwnsRecord(Actor{ID: 0}, 0), "unauthenticated actor owns nothing")
}

func TestPermissionCatalogue(t *testing.T) {
	all := Permissions()
	require.Len(t, all, 21)

	seen := make(map[Permission]struct{}, len(all))
	for _, p := range all {
		require.True(t, p.IsValid())
		seen[p] = struct{}{}
	}
	require.Len(t, seen, 21, "catalogue entries must be distinct")

	parsed, err := ParsePermission("can_approve_students")
	require.NoError(t, err)
	require.Equal(t, PermApproveStudents, parsed)

	_, err = ParsePermission("can_do_anything")
	require.Error(t, err)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("SUPER_ADMIN")
	require.NoError(t, err)
	require.Equal(t, RoleSuperAdmin, role)
	require.False(t, role.RequiresApproval())

	student, err := ParseRole("STUDENT")
	require.NoError(t, err)
	require.True(t, student.RequiresApproval())

	_, err = ParseRole("PRINCIPAL")
	require.Error(t, err)
}

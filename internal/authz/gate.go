package authz

// Actor is the resolved identity an authorization decision is made for. It is
// passed explicitly into every check; there is no ambient request-scoped user.
type Actor struct {
	ID     uint
	Role   Role
	Grants map[Permission]bool
}

// Allowed decides whether the actor may perform the action guarded by the
// given permission. Evaluation order, first match wins:
//
//  1. super admins may do everything,
//  2. admins may do what their permission grid grants,
//  3. teachers and students hold no grid permissions at all; their
//     own-record access is scoped by OwnsRecord and the repository filters.
func Allowed(actor Actor, perm Permission) bool {
	if !perm.IsValid() {
		return false
	}

	switch actor.Role {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return actor.Grants[perm]
	case RoleTeacher, RoleStudent:
		return false
	default:
		return false
	}
}

// CanViewUser applies the hard role-visibility boundary: admins can never see
// or act on other ADMIN or SUPER_ADMIN identities, regardless of grid grants.
// Actors always see themselves.
func CanViewUser(actor Actor, targetID uint, targetRole Role) bool {
	if actor.ID == targetID {
		return true
	}

	switch actor.Role {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return targetRole != RoleAdmin && targetRole != RoleSuperAdmin
	case RoleTeacher, RoleStudent:
		return false
	default:
		return false
	}
}

// VisibleRoles returns the roles the actor may list. The second return value
// is false when the actor may list nothing; callers translate that into an
// empty result set rather than an error. A nil slice with ok=true means no
// role restriction applies.
func VisibleRoles(actor Actor) ([]Role, bool) {
	switch actor.Role {
	case RoleSuperAdmin:
		return nil, true
	case RoleAdmin:
		return []Role{RoleTeacher, RoleStudent}, true
	case RoleTeacher, RoleStudent:
		return nil, false
	default:
		return nil, false
	}
}

// OwnsRecord reports whether the actor is the owner of a record attributed to
// ownerUserID. Used to scope student and teacher self-service access.
func OwnsRecord(actor Actor, ownerUserID uint) bool {
	return actor.ID != 0 && actor.ID == ownerUserID
}

package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/internal/utils"
)

// RequireRole admits only the listed roles. It must run after JWTProtected.
func RequireRole(roles ...authz.Role) fiber.Handler {
	allowed := make(map[authz.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role := RoleFromContext(c)
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "you do not have permission to perform this action")
		}
		return c.Next()
	}
}

// RequireRoleOrPermission admits the listed roles outright; any other caller
// must pass the permission gate. Used where teachers act by virtue of their
// role while admins need an explicit grid grant.
func RequireRoleOrPermission(perm authz.Permission, permissions service.PermissionService, roles ...authz.Role) fiber.Handler {
	byRole := make(map[authz.Role]struct{}, len(roles))
	for _, role := range roles {
		byRole[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role := RoleFromContext(c)
		if _, ok := byRole[role]; ok {
			return c.Next()
		}

		actor, err := permissions.ActorFor(c.UserContext(), UserIDFromContext(c), role)
		if err != nil {
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve permissions")
		}

		if !authz.Allowed(actor, perm) {
			return utils.SendError(c, fiber.StatusForbidden, "you do not have permission to perform this action")
		}

		return c.Next()
	}
}

// RequirePermission admits super admins unconditionally and admins whose
// permission grid grants the named permission. It must run after JWTProtected.
func RequirePermission(perm authz.Permission, permissions service.PermissionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserIDFromContext(c)
		role := RoleFromContext(c)

		actor, err := permissions.ActorFor(c.UserContext(), userID, role)
		if err != nil {
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve permissions")
		}

		if !authz.Allowed(actor, perm) {
			return utils.SendError(c, fiber.StatusForbidden, "you do not have permission to perform this action")
		}

		return c.Next()
	}
}

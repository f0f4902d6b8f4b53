package guard

import (
	"github.com/cicbolivia/portal/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// Role is a portal user role.
type Role string

const (
	RoleAdminGeneral Role = "admin_general"
	RoleAdminCiudad  Role = "admin_ciudad"
	RoleUsuario      Role = "Usuario"
	RoleInvitado     Role = "invitado"
)

// Permissions.
const (
	PermAdminAccess      = "admin.access"
	PermAdminUsersManage = "admin.users.manage"
	PermUsersRead        = "users.read"
)

var rolePermissions = map[Role][]string{
	RoleAdminGeneral: {PermAdminAccess},
	RoleAdminCiudad:  {PermAdminUsersManage},
	RoleUsuario:      {PermUsersRead},
	RoleInvitado:     {},
}

// HasPermission reports whether role grants perm. Unknown and empty roles
// grant nothing.
func HasPermission(role Role, perm string) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// RoleHeader carries the caller's role, set by the upstream session layer.
const RoleHeader = "X-User-Role"

// RequirePermission rejects with 403 requests whose role grants none of
// perms. It is meant to run after New.
func RequirePermission(perms ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c.Get(RoleHeader))
		for _, perm := range perms {
			if HasPermission(role, perm) {
				return c.Next()
			}
		}

		logger.Get().Warn().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("role", string(role)).
			Strs("permissions", perms).
			Msg("Unauthorized access attempt")

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No autorizado",
		})
	}
}

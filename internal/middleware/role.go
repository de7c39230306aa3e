package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Roles carried in agent tokens. Supervisors additionally manage templates
// and seat blocks; agents run assignment and check-in.
const (
	RoleAgent      = "AGENT"
	RoleSupervisor = "SUPERVISOR"
)

// RequireRole enforces that the authenticated agent carries one of the given
// roles. AgentAuth must run earlier in the chain so the "role" key is set.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

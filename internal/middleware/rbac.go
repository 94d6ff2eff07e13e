package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/quizhub-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToUpper(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return unauthorized(c, "authentication required")
		}

		role := normalizeRoleValue(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendErrorCode(c, fiber.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToUpper(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToUpper(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToUpper(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}

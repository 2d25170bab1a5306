package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

// RequireRole permits the request only when the principal holds one of the
// listed roles.
func RequireRole(roles ...domain.UserRole) fiber.Handler {
	allowed := make(map[domain.UserRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *fiber.Ctx) error {
		principal, err := MustPrincipal(c)
		if err != nil {
			return err
		}
		if !allowed[principal.User.Role] {
			return util.NewForbidden("insufficient role for this operation")
		}
		return c.Next()
	}
}

// RequireStaff permits admins, support managers and support agents.
func RequireStaff() fiber.Handler {
	return RequireRole(domain.UserRoleAdmin, domain.UserRoleSupportManager, domain.UserRoleSupportAgent)
}

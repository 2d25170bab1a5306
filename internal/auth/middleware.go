package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/Coconut044/SmartTicketSystem/internal/domain"
	"github.com/Coconut044/SmartTicketSystem/internal/repository"
	"github.com/Coconut044/SmartTicketSystem/pkg/util"
)

const principalKey = "auth.principal"

// Principal is the authenticated user attached to the request.
type Principal struct {
	User *domain.User
}

// Middleware verifies the bearer token, loads the account and attaches the
// principal to the request. Deactivated accounts are rejected even when
// their token has not yet expired.
func Middleware(issuer *TokenIssuer, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return util.NewUnauthorized("missing bearer token")
		}
		claims, err := issuer.Verify(token)
		if err != nil {
			return util.NewUnauthorized("invalid or expired token")
		}

		user, err := users.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return util.NewUnauthorized("account no longer exists")
			}
			return util.MapError(err)
		}
		if !user.Active {
			return util.NewUnauthorized("account is deactivated")
		}

		c.Locals(principalKey, &Principal{User: user})
		return c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// route is unauthenticated.
func PrincipalFromContext(c *fiber.Ctx) *Principal {
	principal, _ := c.Locals(principalKey).(*Principal)
	return principal
}

// MustPrincipal returns the principal or an UNAUTHORIZED error for routes
// that require one.
func MustPrincipal(c *fiber.Ctx) (*Principal, error) {
	principal := PrincipalFromContext(c)
	if principal == nil || principal.User == nil {
		return nil, util.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

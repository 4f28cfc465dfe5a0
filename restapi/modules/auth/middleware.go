package auth

import (
	"github.com/gofiber/fiber/v2"
)

type contextKey string

// Context keys under which the authenticated identity is carried into
// non-fiber call paths such as GraphQL resolvers.
const (
	UserKey   contextKey = "username"
	GroupsKey contextKey = "groups"
)

// RequireAuth middleware validates the session token from the cookie and
// blocks guests
func RequireAuth(c *fiber.Ctx) error {
	token := c.Cookies("auth_token")
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired session",
		})
	}

	c.Locals("is_authenticated", true)
	c.Locals("username", claims.Username)
	c.Locals("groups", claims.Groups)

	return c.Next()
}

// RequireOperation checks the access gate for a named operation using the
// authenticated user's group memberships. Deny is fail-closed.
func RequireOperation(gate *Gate, operation string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groups, ok := c.Locals("groups").([]string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if !gate.Allowed(groups, operation) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}

// Username returns the authenticated username from the request context.
func Username(c *fiber.Ctx) string {
	if name, ok := c.Locals("username").(string); ok {
		return name
	}
	return ""
}

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/ecommerce-order-system/internal/auth"
	"github.com/fairyhunter13/ecommerce-order-system/internal/model"
)

// Locals keys set by RequireAuth.
const (
	UserIDKey = "userID"
	RoleKey   = "userRole"
)

// RequireAuth verifies the bearer token and stores the caller identity in
// request locals. Unauthenticated requests get 401.
func RequireAuth(tokens *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(RoleKey, claims.Role)
		return c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. Must run after
// RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Role(c) != model.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin access required"})
		}
		return c.Next()
	}
}

// UserID returns the authenticated caller's account id, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

// Role returns the authenticated caller's role, or "".
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(RoleKey).(string)
	return role
}

// IsAdmin reports whether the caller carries the admin role.
func IsAdmin(c *fiber.Ctx) bool {
	return Role(c) == model.RoleAdmin
}

package auth

import (
	"github.com/examguard/integrity-backend/model"
	"github.com/examguard/integrity-backend/util"
	"github.com/gofiber/fiber/v2"
)

// RequireAuth middleware validates the JWT token from the cookie and blocks
// unauthenticated callers.
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

	// Store user info in context
	c.Locals("is_authenticated", true)
	c.Locals("user_id", claims.UserID)
	c.Locals("username", claims.Username)
	c.Locals("role", claims.Role)
	c.Locals("college_id", claims.CollegeID)

	return c.Next()
}

// OptionalAuth identifies the user if a token is present but does not block
// guests.
func OptionalAuth(c *fiber.Ctx) error {
	token := c.Cookies("auth_token")
	if token == "" {
		c.Locals("is_authenticated", false)
		return c.Next()
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		// Treat invalid/expired tokens as guest access
		c.Locals("is_authenticated", false)
		return c.Next()
	}

	c.Locals("is_authenticated", true)
	c.Locals("user_id", claims.UserID)
	c.Locals("username", claims.Username)
	c.Locals("role", claims.Role)
	c.Locals("college_id", claims.CollegeID)

	return c.Next()
}

// RequireRole middleware checks if user has one of the required roles
func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals("role").(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		if util.Contains(allowedRoles, userRole) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// SecurityContextFromCtx rebuilds the ephemeral security context from the
// request: claims stored in locals plus transport metadata.
func SecurityContextFromCtx(c *fiber.Ctx) model.SecurityContext {
	userID, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	collegeID, _ := c.Locals("college_id").(string)

	sessionID := c.Cookies("session_id")
	if sessionID == "" {
		sessionID = c.Get("X-Session-Id")
	}

	return model.SecurityContext{
		UserID:    userID,
		SessionID: sessionID,
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
		CollegeID: collegeID,
		Role:      role,
	}
}

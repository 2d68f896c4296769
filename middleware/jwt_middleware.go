package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"techpals/config"
	"techpals/models"
	"techpals/utils"
)

const revokedKeyPrefix = "revoked:"

// Protected authenticates the request via JWT, loads the user and stores
// it in Locals. Every state-changing route and every personal-record view
// sits behind this gate.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authorization format",
				})
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie if header not present
			token = c.Cookies("access_token")
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authorization required",
				})
			}
		}

		// Parse and validate JWT
		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Reject tokens revoked by logout. Without redis the check is
		// skipped and tokens stay valid until expiry.
		if config.Redis != nil {
			revoked, err := config.Redis.Exists(context.Background(), revokedKeyPrefix+claims.ID).Result()
			if err == nil && revoked > 0 {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Token has been revoked",
				})
			}
		}

		// Find user
		var user models.User
		if err := config.DB.First(&user, claims.UserID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		c.Locals("user", &user)
		c.Locals("userID", user.ID)
		c.Locals("tokenID", claims.ID)
		c.Locals("tokenExpiresAt", claims.ExpiresAt.Time)

		return c.Next()
	}
}

// RequireRole denies callers below the given tier with a forbidden
// outcome. Must run after Protected.
func RequireRole(min models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(*models.User)
		if !user.Role.AtLeast(min) {
			return utils.ForbiddenResponse(c)
		}
		return c.Next()
	}
}

// CurrentUser extracts the authenticated user set by Protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	return c.Locals("user").(*models.User)
}

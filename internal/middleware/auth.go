package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/expert-marketplace/backend/internal/auth"
	"github.com/expert-marketplace/backend/internal/config"
)

const CtxIdentity = "identity"

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "invalid or expired token"})
		}

		c.Locals(CtxIdentity, auth.Identity{
			UserID:    claims.UserID,
			ProfileID: claims.ProfileID,
			Role:      claims.Role,
		})

		return c.Next()
	}
}

// GetIdentity returns the authenticated caller. Handlers pass this into every
// service call; nothing below the HTTP layer reads request-scoped state.
func GetIdentity(c *fiber.Ctx) auth.Identity {
	ident, _ := c.Locals(CtxIdentity).(auth.Identity)
	return ident
}

// AdminMiddleware restricts a route group to admin profiles.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetIdentity(c).IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "error": "admin access required"})
		}
		return c.Next()
	}
}

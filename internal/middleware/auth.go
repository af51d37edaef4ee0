package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/schooldesk/backend/internal/auth"
	"github.com/schooldesk/backend/internal/config"
	"go.uber.org/zap"
)

const CtxAdminID = "admin_id"

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxAdminID, claims.AdminID)

		return c.Next()
	}
}

// GetAdminID returns the authenticated operator identity, used as the
// actor id on log entries.
func GetAdminID(c *fiber.Ctx) string {
	id, _ := c.Locals(CtxAdminID).(string)
	return id
}

package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func LoggerMiddleware(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		reqID, _ := c.Locals(CtxRequestID).(string)
		fields := []zap.Field{
			zap.String("request_id", reqID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		// The operator identity doubles as the audit actor; keep it in the
		// request log so operational and audit trails line up.
		if adminID, _ := c.Locals(CtxAdminID).(string); adminID != "" {
			fields = append(fields, zap.String("admin_id", adminID))
		}
		log.Info("request", fields...)

		return err
	}
}

package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/schooldesk/backend/internal/config"
	"github.com/schooldesk/backend/internal/http/handlers"
	"github.com/schooldesk/backend/internal/middleware"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	auditHandler *handlers.AuditHandler,
	documentHandler *handlers.DocumentHandler,
	wsHub *handlers.WSHub,
) {
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/login", authHandler.Login)

	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Action log
	protected.Get("/audit/logs", auditHandler.ListLogs)
	protected.Get("/audit/logs/:id", auditHandler.GetLog)
	protected.Post("/audit/logs/:id/rollback", auditHandler.Rollback)

	// Generic entity documents (every write is action-logged)
	protected.Get("/collections/:entity/:id", documentHandler.GetDocument)
	protected.Put("/collections/:entity/:id", documentHandler.SaveDocument)
	protected.Delete("/collections/:entity/:id", documentHandler.DeleteDocument)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/schooldesk/backend/internal/config"
	"github.com/schooldesk/backend/internal/db"
	"github.com/schooldesk/backend/internal/events"
	apphttp "github.com/schooldesk/backend/internal/http"
	"github.com/schooldesk/backend/internal/http/handlers"
	"github.com/schooldesk/backend/internal/repositories"
	"github.com/schooldesk/backend/internal/services"
	"github.com/schooldesk/backend/internal/store"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Document store + repositories
	docStore := store.NewPostgres(pool, log)
	logRepo := repositories.NewLogRepo(docStore)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	collections := cfg.CollectionTable()
	auditService := services.NewAuditService(logRepo, log)
	rollbackService := services.NewRollbackService(docStore, logRepo, auditService, collections, publisher, log)
	documentService := services.NewDocumentService(docStore, auditService, collections, publisher, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, log)
	auditHandler := handlers.NewAuditHandler(auditService, rollbackService, cfg, log)
	documentHandler := handlers.NewDocumentHandler(documentService, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, auditHandler, documentHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

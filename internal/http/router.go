package http

import (
	"time"

	"github.com/ads-marketplace/tactics/internal/config"
	"github.com/ads-marketplace/tactics/internal/http/handlers"
	"github.com/ads-marketplace/tactics/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	tacticHandler *handlers.TacticHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	if rdb != nil {
		api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))
	}

	metaHandler := handlers.NewMetaHandler()
	api.Get("/meta/statuses", metaHandler.GetStatuses)
	api.Get("/meta/pacing", metaHandler.GetPacing)

	protected := api.Group("", middleware.BearerMiddleware())

	// Tactics
	protected.Post("/tactics", tacticHandler.CreateTactic)
	protected.Get("/tactics", tacticHandler.ListTactics)
	protected.Get("/tactics/:id", tacticHandler.GetTactic)
	protected.Patch("/tactics/:id", tacticHandler.UpdateTactic)
	protected.Delete("/tactics/:id", tacticHandler.DeleteTactic)
	protected.Get("/tactics/:id/events", tacticHandler.GetTacticEvents)

	// Operators and sales agent callbacks
	internal := app.Group("/internal", middleware.InternalKeyMiddleware(cfg.InternalAPIKey))
	internal.Put("/tactics/:id/status", tacticHandler.UpdateStatus)

	if wsHub != nil {
		app.Use("/ws", handlers.WSUpgradeMiddleware())
		app.Get("/ws", websocket.New(wsHub.HandleWS))
	}
}

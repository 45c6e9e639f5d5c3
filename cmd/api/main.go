package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ads-marketplace/tactics/internal/auth"
	"github.com/ads-marketplace/tactics/internal/config"
	"github.com/ads-marketplace/tactics/internal/db"
	"github.com/ads-marketplace/tactics/internal/events"
	apphttp "github.com/ads-marketplace/tactics/internal/http"
	"github.com/ads-marketplace/tactics/internal/http/handlers"
	"github.com/ads-marketplace/tactics/internal/pricing"
	"github.com/ads-marketplace/tactics/internal/repositories"
	"github.com/ads-marketplace/tactics/internal/segment"
	"github.com/ads-marketplace/tactics/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, db.APIPool, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	tacticRepo := repositories.NewTacticRepo(pool)
	productRepo := repositories.NewMediaProductRepo(pool)
	agentRepo := repositories.NewSalesAgentRepo(pool)
	briefRepo := repositories.NewBriefRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	mediaBuys := services.NewMediaBuyClient(cfg.WebhookBaseURL, cfg.MediaBuyTimeout, log)
	tacticService := services.NewTacticService(
		auth.NewAuthenticator(cfg.JWTSecret),
		tacticRepo,
		productRepo,
		agentRepo,
		briefRepo,
		mediaBuys,
		pricing.NewCalculator(pricing.FlatSignalPricer(cfg.SignalCPMSurcharge)),
		segment.NewGenerator(),
		auditRepo,
		publisher,
		cfg.DefaultCurrency,
		log,
	)

	// Handlers
	tacticHandler := handlers.NewTacticHandler(tacticService, log)
	wsHub := handlers.NewWSHub(cfg.JWTSecret, subscriber, log)
	if err := wsHub.Start(ctx); err != nil {
		log.Warn("websocket hub not subscribed, live updates disabled", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, tacticHandler, wsHub)

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

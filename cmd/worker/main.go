package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ads-marketplace/tactics/internal/config"
	"github.com/ads-marketplace/tactics/internal/db"
	"github.com/ads-marketplace/tactics/internal/events"
	"github.com/ads-marketplace/tactics/internal/models"
	"github.com/ads-marketplace/tactics/internal/repositories"
	"github.com/ads-marketplace/tactics/internal/services"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	cfg.Validate(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, db.WorkerPool, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	tacticRepo := repositories.NewTacticRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	publisher := events.NewRedisPublisher(rdb, log)

	reconciler := services.NewReconciler(tacticRepo, auditRepo, publisher, cfg.ReconcileStaleAfter, cfg.ReconcileBatchSize, log)

	log.Info("worker started",
		zap.Duration("reconcile_interval", cfg.ReconcileInterval),
		zap.Duration("stale_after", cfg.ReconcileStaleAfter),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return reconciler.Run(gctx, cfg.ReconcileInterval)
	})

	// Surface failed provisioning in the worker log for alerting.
	g.Go(func() error {
		subscriber := events.NewRedisSubscriber(rdb, log)
		err := subscriber.Subscribe(gctx, events.StreamTactics, func(e events.Event) {
			if e.Type != events.EventTacticStatusChanged || e.Payload["new_status"] != string(models.TacticStatusFailed) {
				return
			}
			log.Warn("tactic failed",
				zap.Int64("customer_id", e.CustomerID),
				zap.Any("tactic_id", e.Payload["tactic_id"]),
				zap.Any("error_message", e.Payload["error_message"]),
			)
		})
		if err != nil {
			return err
		}
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("worker stopped with error", zap.Error(err))
		return
	}
	log.Info("shutting down worker")
}

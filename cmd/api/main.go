package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/courierdesk-backend/api/routes"
	"github.com/angelmondragon/courierdesk-backend/internal/inventory"
	"github.com/angelmondragon/courierdesk-backend/internal/ledger"
	"github.com/angelmondragon/courierdesk-backend/internal/notifications"
	"github.com/angelmondragon/courierdesk-backend/internal/orders"
	"github.com/angelmondragon/courierdesk-backend/pkg/config"
	"github.com/angelmondragon/courierdesk-backend/pkg/db"
	"github.com/angelmondragon/courierdesk-backend/pkg/instance"
	"github.com/angelmondragon/courierdesk-backend/pkg/logger"
	"github.com/angelmondragon/courierdesk-backend/pkg/metrics"
	"github.com/angelmondragon/courierdesk-backend/pkg/migrate"
	"github.com/angelmondragon/courierdesk-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(registry)

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	emitter, err := notifications.NewEmitter(notificationsRepo, notifications.EmitterOptions{
		Buffer:  cfg.Fulfillment.NotificationBuffer,
		Workers: cfg.Fulfillment.NotificationWorkers,
		Logger:  logg,
		Metrics: fulfillmentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification emitter", err)
		os.Exit(1)
	}
	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	ledgerRepo := ledger.NewRepository(dbClient.DB())
	applier, err := ledger.NewApplier(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger applier", err)
		os.Exit(1)
	}
	ledgerService, err := ledger.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	adjuster, err := inventory.NewAdjuster(inventory.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create stock adjuster", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:        orders.NewRepository(dbClient.DB()),
		Tx:          dbClient,
		Ledger:      applier,
		Stock:       adjuster,
		Notifier:    emitter,
		Logger:      logg,
		Metrics:     fulfillmentMetrics,
		LockTimeout: cfg.Fulfillment.LockTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	emitterCtx, stopEmitter := context.WithCancel(context.WithoutCancel(ctx))
	var emitterDone sync.WaitGroup
	emitterDone.Add(1)
	go func() {
		defer emitterDone.Done()
		emitter.Run(emitterCtx)
	}()

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, registry, ordersService, ledgerService, notificationsService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			stopEmitter()
			emitterDone.Wait()
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "api server shutdown failed", err)
	}

	// In-flight requests have finished; flush the notices they queued.
	stopEmitter()
	emitterDone.Wait()
	logg.Info(ctx, "api server stopped")
}

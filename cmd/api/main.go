package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gestrans/gestrans-backend/api"
	"github.com/gestrans/gestrans-backend/api/routes"
	"github.com/gestrans/gestrans-backend/internal/carriers"
	"github.com/gestrans/gestrans-backend/pkg/config"
	"github.com/gestrans/gestrans-backend/pkg/instance"
	"github.com/gestrans/gestrans-backend/pkg/logger"
	"github.com/gestrans/gestrans-backend/pkg/metrics"
	"github.com/gestrans/gestrans-backend/pkg/migrate"
	"github.com/gestrans/gestrans-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		ctx := logg.WithField(context.Background(), "problems", config.Problems(err))
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := carriers.OpenBackend(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to open carrier store", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logg.Error(context.Background(), "error closing carrier store", err)
		}
	}()

	if backend.DB != nil {
		if err := migrate.MaybeRunDev(ctx, cfg, logg, backend.DB); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	deps := routes.Deps{
		Store:    backend.Store,
		Gatherer: prometheus.DefaultGatherer,
	}

	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		deps.Redis = redisClient
		deps.Idempotency = redisClient
	} else {
		logg.Warn(ctx, "redis not configured; idempotency keys are not enforced")
	}

	store := carriers.NewInstrumented(backend.Store, metrics.NewStoreMetrics(prometheus.DefaultRegisterer))
	deps.Carriers, err = carriers.NewService(store)
	if err != nil {
		logg.Error(ctx, "failed to create carrier service", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"instance":     instance.GetID(),
		"store_driver": backend.Driver,
		"auth_enabled": cfg.JWT.Enabled(),
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(addr, routes.NewRouter(cfg, logg, deps))
	if err := api.Serve(ctx, server, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

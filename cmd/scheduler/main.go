package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/payflow-backend/internal/cron"
	"github.com/angelmondragon/payflow-backend/internal/ledger"
	"github.com/angelmondragon/payflow-backend/internal/payments"
	"github.com/angelmondragon/payflow-backend/internal/platform"
	"github.com/angelmondragon/payflow-backend/internal/profiles"
	"github.com/angelmondragon/payflow-backend/internal/sequence"
	"github.com/angelmondragon/payflow-backend/internal/treasury"
	"github.com/angelmondragon/payflow-backend/pkg/config"
	"github.com/angelmondragon/payflow-backend/pkg/db"
	"github.com/angelmondragon/payflow-backend/pkg/instance"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
	"github.com/angelmondragon/payflow-backend/pkg/metrics"
	"github.com/angelmondragon/payflow-backend/pkg/migrate"
	"github.com/angelmondragon/payflow-backend/pkg/outbox"
	"github.com/angelmondragon/payflow-backend/pkg/redis"
)

const lockKeyFormat = "payflow:scheduler:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "scheduler"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "scheduler"

	logg = logger.New(logger.Options{
		ServiceName: "scheduler",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	paymentSvc, err := buildPaymentService(cfg, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build payment service", err)
		os.Exit(1)
	}

	expiryJob, err := cron.NewPaymentExpiryJob(cron.PaymentExpiryJobParams{
		Logger:   logg,
		Payments: paymentSvc,
		Batch:    cfg.Scheduler.SweepBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment expiry job", err)
		os.Exit(1)
	}

	recurringJob, err := cron.NewRecurringRunnerJob(cron.RecurringRunnerJobParams{
		Logger:   logg,
		Payments: paymentSvc,
		Batch:    cfg.Scheduler.ExecuteBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create recurring runner job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:      logg,
		DB:          dbClient,
		Repository:  outbox.NewRepository(dbClient.DB()),
		MinAttempts: cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(expiryJob, recurringJob, retentionJob)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Scheduler.TickInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting scheduler")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "scheduler stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "scheduler shutting down gracefully")
}

func buildPaymentService(cfg *config.Config, dbClient *db.Client, logg *logger.Logger) (payments.Service, error) {
	platformSvc, err := platform.NewService(platform.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		return nil, fmt.Errorf("platform service: %w", err)
	}
	if err := platformSvc.Bootstrap(context.Background(), cfg.Platform); err != nil {
		return nil, fmt.Errorf("platform bootstrap: %w", err)
	}

	profileSvc, err := profiles.NewService(profiles.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, fmt.Errorf("profile service: %w", err)
	}

	allocator := sequence.NewAllocator()

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), allocator)
	if err != nil {
		return nil, fmt.Errorf("ledger service: %w", err)
	}

	treasurySvc, err := treasury.NewService(dbClient.DB())
	if err != nil {
		return nil, fmt.Errorf("treasury service: %w", err)
	}

	return payments.NewService(payments.ServiceParams{
		Repo:      payments.NewRepository(dbClient.DB()),
		Tx:        dbClient,
		Platform:  platformSvc,
		Profiles:  profileSvc,
		Ledger:    ledgerSvc,
		Sequences: allocator,
		Treasury:  treasurySvc,
		Outbox:    outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Metrics:   metrics.NewPaymentMetrics(prometheus.DefaultRegisterer),
	})
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}

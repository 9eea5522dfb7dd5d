package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/payflow-backend/api"
	"github.com/angelmondragon/payflow-backend/api/routes"
	"github.com/angelmondragon/payflow-backend/internal/ledger"
	"github.com/angelmondragon/payflow-backend/internal/payments"
	"github.com/angelmondragon/payflow-backend/internal/platform"
	"github.com/angelmondragon/payflow-backend/internal/profiles"
	"github.com/angelmondragon/payflow-backend/internal/sequence"
	"github.com/angelmondragon/payflow-backend/internal/treasury"
	"github.com/angelmondragon/payflow-backend/pkg/config"
	"github.com/angelmondragon/payflow-backend/pkg/db"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
	"github.com/angelmondragon/payflow-backend/pkg/metrics"
	"github.com/angelmondragon/payflow-backend/pkg/migrate"
	"github.com/angelmondragon/payflow-backend/pkg/outbox"
	"github.com/angelmondragon/payflow-backend/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer closeQuietly(logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer closeQuietly(logg, "redis", redisClient.Close)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	platformSvc, err := platform.NewService(platform.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create platform service", err)
		os.Exit(1)
	}
	if err := platformSvc.Bootstrap(context.Background(), cfg.Platform); err != nil {
		logg.Error(context.Background(), "failed to bootstrap platform settings", err)
		os.Exit(1)
	}

	profileSvc, err := profiles.NewService(profiles.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	allocator := sequence.NewAllocator()

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), allocator)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	treasurySvc, err := treasury.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create treasury service", err)
		os.Exit(1)
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	paymentSvc, err := payments.NewService(payments.ServiceParams{
		Repo:      payments.NewRepository(dbClient.DB()),
		Tx:        dbClient,
		Platform:  platformSvc,
		Profiles:  profileSvc,
		Ledger:    ledgerSvc,
		Sequences: allocator,
		Treasury:  treasurySvc,
		Outbox:    outboxSvc,
		Metrics:   paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Payments: paymentSvc,
		Platform: platformSvc,
		Ledger:   ledgerSvc,
		Profiles: profileSvc,
		Metrics:  registry,
	})
	server := api.NewServer(cfg, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := multierr.Append(server.Shutdown(shutdownCtx), <-errCh)
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "error during shutdown", err)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}

func closeQuietly(logg *logger.Logger, name string, fn func() error) {
	if err := fn(); err != nil {
		logg.Error(context.Background(), "error closing "+name, err)
	}
}

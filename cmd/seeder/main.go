// Seeds local development balances. Refuses to run against production.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/angelmondragon/payflow-backend/internal/profiles"
	"github.com/angelmondragon/payflow-backend/internal/treasury"
	"github.com/angelmondragon/payflow-backend/pkg/config"
	"github.com/angelmondragon/payflow-backend/pkg/db"
	"github.com/angelmondragon/payflow-backend/pkg/logger"
	"github.com/angelmondragon/payflow-backend/pkg/migrate"
)

const (
	defaultAccounts     = 10
	defaultBalanceCents = int64(100_000) // $1,000.00
)

func main() {
	accounts := flag.Int("accounts", defaultAccounts, "number of demo accounts to create")
	balance := flag.Int64("balance-cents", defaultBalanceCents, "starting balance per account")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "seeder"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	if cfg.App.IsProd() {
		logg.Error(context.Background(), "seeder refuses to run in production", nil)
		os.Exit(1)
	}

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

	treasurySvc, err := treasury.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create treasury service", err)
		os.Exit(1)
	}
	profileSvc, err := profiles.NewService(profiles.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	ctx := context.Background()
	now := time.Now().UTC()
	seeded := make([]string, 0, *accounts)
	for i := 0; i < *accounts; i++ {
		account := uuid.New()
		if _, err := profileSvc.Ensure(ctx, account, now); err != nil {
			logg.Error(ctx, "failed to create profile", err)
			os.Exit(1)
		}
		if err := treasurySvc.Deposit(ctx, account, *balance); err != nil {
			logg.Error(ctx, "failed to fund account", err)
			os.Exit(1)
		}
		seeded = append(seeded, account.String())
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"accounts":      seeded,
		"balance_cents": *balance,
	})
	logg.Info(ctx, "seeded demo accounts")
}

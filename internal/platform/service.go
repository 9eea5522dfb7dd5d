package platform

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/pkg/config"
	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the owner-gated administrative controls and the settings
// reads every ledger operation performs.
type Service interface {
	Bootstrap(ctx context.Context, seed config.PlatformConfig) error
	Settings(ctx context.Context) (*models.PlatformSettings, error)
	Load(ctx context.Context, tx *gorm.DB) (*models.PlatformSettings, error)
	UpdateFeeRate(ctx context.Context, actor uuid.UUID, rateBps int64) error
	UpdateLimits(ctx context.Context, actor uuid.UUID, minCents, maxCents int64) error
	Pause(ctx context.Context, actor uuid.UUID) error
	Unpause(ctx context.Context, actor uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires the platform service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("platform repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Bootstrap inserts the settings row from the environment seed when the
// table is empty. Later mutations only happen through the admin operations.
func (s *service) Bootstrap(ctx context.Context, seed config.PlatformConfig) error {
	existing, err := s.repo.Get(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	owner, err := uuid.Parse(seed.OwnerAccount)
	if err != nil {
		return fmt.Errorf("parsing platform owner: %w", err)
	}
	feeAccount, err := uuid.Parse(seed.FeeAccount)
	if err != nil {
		return fmt.Errorf("parsing fee account: %w", err)
	}
	custody, err := uuid.Parse(seed.CustodyAccount)
	if err != nil {
		return fmt.Errorf("parsing custody account: %w", err)
	}
	if seed.FeeRateBps < 0 || seed.FeeRateBps > models.MaxFeeRateBps {
		return fmt.Errorf("seed fee rate %d outside [0,%d]", seed.FeeRateBps, models.MaxFeeRateBps)
	}
	if seed.MinAmountCents <= 0 || seed.MinAmountCents >= seed.MaxAmountCents {
		return fmt.Errorf("seed limits invalid: min=%d max=%d", seed.MinAmountCents, seed.MaxAmountCents)
	}

	return s.repo.Create(ctx, &models.PlatformSettings{
		Owner:          owner,
		FeeAccount:     feeAccount,
		CustodyAccount: custody,
		FeeRateBps:     seed.FeeRateBps,
		MinAmountCents: seed.MinAmountCents,
		MaxAmountCents: seed.MaxAmountCents,
	})
}

func (s *service) Settings(ctx context.Context) (*models.PlatformSettings, error) {
	return s.repo.Get(ctx)
}

// Load reads the settings inside an operation's transaction.
func (s *service) Load(ctx context.Context, tx *gorm.DB) (*models.PlatformSettings, error) {
	settings, err := s.repo.WithTx(tx).Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform settings")
	}
	if settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "platform settings not bootstrapped")
	}
	return settings, nil
}

func (s *service) UpdateFeeRate(ctx context.Context, actor uuid.UUID, rateBps int64) error {
	if rateBps < 0 || rateBps > models.MaxFeeRateBps {
		return pkgerrors.New(pkgerrors.CodeInvalidAmount, "fee rate outside allowed range").
			WithDetails(map[string]int64{"rate_bps": rateBps, "max_bps": models.MaxFeeRateBps})
	}
	return s.mutate(ctx, actor, func(settings *models.PlatformSettings) {
		settings.FeeRateBps = rateBps
	})
}

func (s *service) UpdateLimits(ctx context.Context, actor uuid.UUID, minCents, maxCents int64) error {
	if minCents <= 0 || minCents >= maxCents {
		return pkgerrors.New(pkgerrors.CodeInvalidAmount, "limits must satisfy 0 < min < max").
			WithDetails(map[string]int64{"min_cents": minCents, "max_cents": maxCents})
	}
	return s.mutate(ctx, actor, func(settings *models.PlatformSettings) {
		settings.MinAmountCents = minCents
		settings.MaxAmountCents = maxCents
	})
}

func (s *service) Pause(ctx context.Context, actor uuid.UUID) error {
	return s.mutate(ctx, actor, func(settings *models.PlatformSettings) {
		settings.Paused = true
	})
}

func (s *service) Unpause(ctx context.Context, actor uuid.UUID) error {
	return s.mutate(ctx, actor, func(settings *models.PlatformSettings) {
		settings.Paused = false
	})
}

func (s *service) mutate(ctx context.Context, actor uuid.UUID, apply func(*models.PlatformSettings)) error {
	if actor == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity missing")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		settings, err := repo.Get(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform settings")
		}
		if settings == nil {
			return pkgerrors.New(pkgerrors.CodeDependency, "platform settings not bootstrapped")
		}
		if settings.Owner != actor {
			return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not the platform owner")
		}

		updated := *settings
		apply(&updated)
		if err := repo.Save(ctx, &updated); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save platform settings")
		}
		return nil
	})
}

package platform

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/pkg/config"
	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
)

type fakeRepository struct {
	row *models.PlatformSettings
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	if f.row == nil {
		return nil, nil
	}
	clone := *f.row
	return &clone, nil
}

func (f *fakeRepository) Create(ctx context.Context, settings *models.PlatformSettings) error {
	clone := *settings
	f.row = &clone
	return nil
}

func (f *fakeRepository) Save(ctx context.Context, settings *models.PlatformSettings) error {
	clone := *settings
	f.row = &clone
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func seededService(t *testing.T, owner uuid.UUID) (Service, *fakeRepository) {
	t.Helper()
	repo := &fakeRepository{row: &models.PlatformSettings{
		ID:             models.PlatformSettingsID,
		Owner:          owner,
		FeeAccount:     uuid.New(),
		CustodyAccount: uuid.New(),
		FeeRateBps:     25,
		MinAmountCents: 1_000,
		MaxAmountCents: 1_000_000_000,
	}}
	svc, err := NewService(repo, fakeTxRunner{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, repo
}

func TestBootstrapSeedsOnce(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo, fakeTxRunner{})

	seed := config.PlatformConfig{
		OwnerAccount:   uuid.NewString(),
		FeeAccount:     uuid.NewString(),
		CustodyAccount: uuid.NewString(),
		FeeRateBps:     25,
		MinAmountCents: 1_000,
		MaxAmountCents: 1_000_000,
	}
	if err := svc.Bootstrap(context.Background(), seed); err != nil {
		t.Fatalf("Bootstrap error: %v", err)
	}
	if repo.row == nil || repo.row.FeeRateBps != 25 {
		t.Fatalf("expected seeded settings, got %+v", repo.row)
	}

	repo.row.FeeRateBps = 100
	if err := svc.Bootstrap(context.Background(), seed); err != nil {
		t.Fatalf("Bootstrap error: %v", err)
	}
	if repo.row.FeeRateBps != 100 {
		t.Fatal("second Bootstrap must not overwrite existing settings")
	}
}

func TestUpdateFeeRateOwnerGate(t *testing.T) {
	owner := uuid.New()
	svc, repo := seededService(t, owner)

	err := svc.UpdateFeeRate(context.Background(), uuid.New(), 50)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN for non-owner, got %v", err)
	}

	if err := svc.UpdateFeeRate(context.Background(), owner, 50); err != nil {
		t.Fatalf("UpdateFeeRate error: %v", err)
	}
	if repo.row.FeeRateBps != 50 {
		t.Fatalf("fee rate not applied: %d", repo.row.FeeRateBps)
	}
}

func TestUpdateFeeRateCap(t *testing.T) {
	owner := uuid.New()
	svc, _ := seededService(t, owner)

	err := svc.UpdateFeeRate(context.Background(), owner, models.MaxFeeRateBps+1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvalidAmount) {
		t.Fatalf("expected INVALID_AMOUNT above cap, got %v", err)
	}
}

func TestUpdateLimitsValidation(t *testing.T) {
	owner := uuid.New()
	svc, repo := seededService(t, owner)

	err := svc.UpdateLimits(context.Background(), owner, 5_000, 5_000)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvalidAmount) {
		t.Fatalf("expected INVALID_AMOUNT for min >= max, got %v", err)
	}

	if err := svc.UpdateLimits(context.Background(), owner, 2_000, 4_000_000); err != nil {
		t.Fatalf("UpdateLimits error: %v", err)
	}
	if repo.row.MinAmountCents != 2_000 || repo.row.MaxAmountCents != 4_000_000 {
		t.Fatalf("limits not applied: %+v", repo.row)
	}
}

func TestPauseUnpause(t *testing.T) {
	owner := uuid.New()
	svc, repo := seededService(t, owner)

	if err := svc.Pause(context.Background(), owner); err != nil {
		t.Fatalf("Pause error: %v", err)
	}
	if !repo.row.Paused {
		t.Fatal("expected paused flag set")
	}
	if err := svc.Unpause(context.Background(), owner); err != nil {
		t.Fatalf("Unpause error: %v", err)
	}
	if repo.row.Paused {
		t.Fatal("expected paused flag cleared")
	}
}

func TestMutateRequiresIdentity(t *testing.T) {
	svc, _ := seededService(t, uuid.New())
	err := svc.Pause(context.Background(), uuid.Nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

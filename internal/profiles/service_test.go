package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/angelmondragon/payflow-backend/pkg/enums"
)

type fakeRepository struct {
	rows map[uuid.UUID]*models.UserProfile
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: map[uuid.UUID]*models.UserProfile{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Find(ctx context.Context, account uuid.UUID) (*models.UserProfile, error) {
	if row, ok := f.rows[account]; ok {
		clone := *row
		return &clone, nil
	}
	return nil, nil
}

func (f *fakeRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	clone := *profile
	f.rows[profile.AccountID] = &clone
	return nil
}

func (f *fakeRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	clone := *profile
	f.rows[profile.AccountID] = &clone
	return nil
}

func TestEnsureCreatesWithDefaults(t *testing.T) {
	repo := newFakeRepository()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	account := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	profile, err := svc.Ensure(context.Background(), account, now)
	if err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if profile.ReputationScore != models.DefaultReputationScore {
		t.Fatalf("expected default reputation, got %d", profile.ReputationScore)
	}
	if !profile.RegisteredAt.Equal(now) {
		t.Fatalf("expected registration time %v, got %v", now, profile.RegisteredAt)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	account := uuid.New()
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	if _, err := svc.Ensure(context.Background(), account, first); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	profile, err := svc.Ensure(context.Background(), account, later)
	if err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if !profile.RegisteredAt.Equal(first) {
		t.Fatal("second Ensure must not reset registration time")
	}
}

func TestRecordSettlementByRole(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	account := uuid.New()
	now := time.Now().UTC()
	if _, err := svc.Ensure(context.Background(), account, now); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}

	if err := svc.RecordSettlement(context.Background(), account, 1_000, enums.SettlementRoleSender); err != nil {
		t.Fatalf("RecordSettlement error: %v", err)
	}
	if err := svc.RecordSettlement(context.Background(), account, 2_500, enums.SettlementRoleRecipient); err != nil {
		t.Fatalf("RecordSettlement error: %v", err)
	}

	profile, err := svc.Get(context.Background(), account)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if profile.TxCount != 2 {
		t.Fatalf("expected tx count 2, got %d", profile.TxCount)
	}
	if profile.TotalSentCents != 1_000 || profile.TotalReceivedCents != 2_500 {
		t.Fatalf("unexpected totals: %+v", profile)
	}
}

func TestRecordSettlementRequiresProfile(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	err := svc.RecordSettlement(context.Background(), uuid.New(), 100, enums.SettlementRoleSender)
	if err == nil {
		t.Fatal("expected error for missing profile")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := newFakeRepository()
	svc, _ := NewService(repo)

	profile, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if profile != nil {
		t.Fatal("expected nil profile on miss")
	}
}

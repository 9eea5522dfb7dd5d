package profiles

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/angelmondragon/payflow-backend/pkg/enums"
)

// Service maintains the per-account reputation ledger.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Ensure(ctx context.Context, account uuid.UUID, now time.Time) (*models.UserProfile, error)
	RecordSettlement(ctx context.Context, account uuid.UUID, amountCents int64, role enums.SettlementRole) error
	Get(ctx context.Context, account uuid.UUID) (*models.UserProfile, error)
}

type service struct {
	repo Repository
}

// NewService wires a profile service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

// Ensure lazily creates the profile on first contact. Idempotent.
func (s *service) Ensure(ctx context.Context, account uuid.UUID, now time.Time) (*models.UserProfile, error) {
	if account == uuid.Nil {
		return nil, fmt.Errorf("account id is required")
	}
	existing, err := s.repo.Find(ctx, account)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	profile := &models.UserProfile{
		AccountID:       account,
		ReputationScore: models.DefaultReputationScore,
		RegisteredAt:    now,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// RecordSettlement bumps the transaction count and the side-specific total.
// Only called once per party per settled transfer; never on a failed one.
func (s *service) RecordSettlement(ctx context.Context, account uuid.UUID, amountCents int64, role enums.SettlementRole) error {
	if account == uuid.Nil {
		return fmt.Errorf("account id is required")
	}
	if !role.IsValid() {
		return fmt.Errorf("invalid settlement role %q", role)
	}

	profile, err := s.repo.Find(ctx, account)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("profile %s not found; Ensure must run before settlement", account)
	}

	updated := *profile
	updated.TxCount++
	switch role {
	case enums.SettlementRoleSender:
		updated.TotalSentCents += amountCents
	case enums.SettlementRoleRecipient:
		updated.TotalReceivedCents += amountCents
	}
	return s.repo.Save(ctx, &updated)
}

func (s *service) Get(ctx context.Context, account uuid.UUID) (*models.UserProfile, error) {
	if account == uuid.Nil {
		return nil, nil
	}
	return s.repo.Find(ctx, account)
}

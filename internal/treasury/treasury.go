package treasury

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
)

// Transferrer is the asset-transfer primitive the ledger engine consumes.
// Implementations must be transactional: a returned error leaves both
// balances untouched, and the engine aborts the surrounding operation.
type Transferrer interface {
	Transfer(tx *gorm.DB, from, to uuid.UUID, amountCents int64) error
}

// Service is the balance-backed default Transferrer plus the dev/test
// helpers for funding accounts.
type Service struct {
	db *gorm.DB
}

// NewService returns a treasury bound to the provided database.
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("treasury database required")
	}
	return &Service{db: db}, nil
}

// Transfer debits from and credits to inside the caller's transaction.
// Fails with TRANSFER_FAILED when the sender balance cannot cover the amount.
func (s *Service) Transfer(tx *gorm.DB, from, to uuid.UUID, amountCents int64) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if amountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeTransferFailed, "transfer amount must be positive")
	}
	if from == to {
		return nil
	}

	res := tx.Model(&models.LedgerAccount{}).
		Where("account_id = ? AND balance_cents >= ?", from, amountCents).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "debit sender")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeTransferFailed, "insufficient funds").
			WithDetails(map[string]any{"account": from.String(), "amount_cents": amountCents})
	}

	if err := s.credit(tx, to, amountCents); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit recipient")
	}
	return nil
}

func (s *Service) credit(tx *gorm.DB, account uuid.UUID, amountCents int64) error {
	res := tx.Model(&models.LedgerAccount{}).
		Where("account_id = ?", account).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", amountCents))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&models.LedgerAccount{AccountID: account, BalanceCents: amountCents}).Error
	}
	return nil
}

// Deposit credits an account outside any ledger operation. Used by the dev
// seeder and tests to fund accounts.
func (s *Service) Deposit(ctx context.Context, account uuid.UUID, amountCents int64) error {
	if amountCents <= 0 {
		return fmt.Errorf("deposit amount must be positive")
	}
	return s.credit(s.db.WithContext(ctx), account, amountCents)
}

// Balance returns the spendable balance for the account, zero when unknown.
func (s *Service) Balance(ctx context.Context, account uuid.UUID) (int64, error) {
	var row models.LedgerAccount
	err := s.db.WithContext(ctx).Where("account_id = ?", account).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.BalanceCents, nil
}

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/internal/sequence"
	"github.com/angelmondragon/payflow-backend/pkg/db/models"
	"github.com/angelmondragon/payflow-backend/pkg/enums"
)

// Service records settled transfers in the append-only audit log.
type Service interface {
	Append(ctx context.Context, tx *gorm.DB, input AppendInput) (*models.TransactionRecord, error)
	Get(ctx context.Context, id uint64) (*models.TransactionRecord, error)
	ListByAccount(ctx context.Context, account uuid.UUID, limit int, beforeID uint64) ([]models.TransactionRecord, error)
}

// AppendInput captures the immutable data an audit record requires.
type AppendInput struct {
	Sender    uuid.UUID
	Recipient uuid.UUID
	NetCents  int64
	FeeCents  int64
	Mode      enums.PaymentMode
	SettledAt time.Time
}

type service struct {
	repo  Repository
	alloc sequence.Allocator
}

// NewService wires the audit log service.
func NewService(repo Repository, alloc sequence.Allocator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if alloc == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	return &service{repo: repo, alloc: alloc}, nil
}

// Append allocates the next transaction id and stores the record. Must run
// inside the settling transaction so a failed settlement leaves no trace.
func (s *service) Append(ctx context.Context, tx *gorm.DB, input AppendInput) (*models.TransactionRecord, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if input.Sender == uuid.Nil || input.Recipient == uuid.Nil {
		return nil, fmt.Errorf("sender and recipient are required")
	}
	if !input.Mode.IsValid() {
		return nil, fmt.Errorf("invalid payment mode %q", input.Mode)
	}
	if input.NetCents <= 0 || input.FeeCents < 0 {
		return nil, fmt.Errorf("invalid amounts: net=%d fee=%d", input.NetCents, input.FeeCents)
	}

	id, err := s.alloc.Next(tx, models.SequenceTransaction)
	if err != nil {
		return nil, err
	}

	record := &models.TransactionRecord{
		ID:        id,
		Sender:    input.Sender,
		Recipient: input.Recipient,
		NetCents:  input.NetCents,
		FeeCents:  input.FeeCents,
		Mode:      input.Mode,
		SettledAt: input.SettledAt,
	}
	if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) Get(ctx context.Context, id uint64) (*models.TransactionRecord, error) {
	return s.repo.Find(ctx, id)
}

func (s *service) ListByAccount(ctx context.Context, account uuid.UUID, limit int, beforeID uint64) ([]models.TransactionRecord, error) {
	if account == uuid.Nil {
		return nil, nil
	}
	return s.repo.ListByAccount(ctx, account, limit, beforeID)
}

package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/payflow-backend/pkg/db/models"
)

// Repository manages persistence for the transaction audit log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.TransactionRecord) error
	Find(ctx context.Context, id uint64) (*models.TransactionRecord, error)
	ListByAccount(ctx context.Context, account uuid.UUID, limit int, beforeID uint64) ([]models.TransactionRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an audit log repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.TransactionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) Find(ctx context.Context, id uint64) (*models.TransactionRecord, error) {
	var record models.TransactionRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repository) ListByAccount(ctx context.Context, account uuid.UUID, limit int, beforeID uint64) ([]models.TransactionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx).
		Where("sender = ? OR recipient = ?", account, account)
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}
	var records []models.TransactionRecord
	if err := query.
		Order("id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

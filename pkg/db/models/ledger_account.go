package models

import (
	"time"

	"github.com/google/uuid"
)

// LedgerAccount backs the asset-transfer primitive with a spendable balance.
type LedgerAccount struct {
	AccountID    uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey"`
	BalanceCents int64     `gorm:"column:balance_cents;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/pkg/enums"
)

// TransactionRecord is one settled transfer in the append-only audit log.
// Rows are never updated or deleted.
type TransactionRecord struct {
	ID        uint64            `gorm:"column:id;primaryKey;autoIncrement:false"`
	Sender    uuid.UUID         `gorm:"column:sender;type:uuid;not null;index"`
	Recipient uuid.UUID         `gorm:"column:recipient;type:uuid;not null;index"`
	NetCents  int64             `gorm:"column:net_cents;not null"`
	FeeCents  int64             `gorm:"column:fee_cents;not null"`
	Mode      enums.PaymentMode `gorm:"column:mode;not null"`
	SettledAt time.Time         `gorm:"column:settled_at;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}

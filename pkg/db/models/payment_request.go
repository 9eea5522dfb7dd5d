package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/pkg/enums"
)

// PaymentRequest is a single payment instance moving through the
// pending → completed/expired/cancelled lifecycle.
type PaymentRequest struct {
	ID          uint64              `gorm:"column:id;primaryKey;autoIncrement:false"`
	Sender      uuid.UUID           `gorm:"column:sender;type:uuid;not null;index"`
	Recipient   uuid.UUID           `gorm:"column:recipient;type:uuid;not null;index"`
	AmountCents int64               `gorm:"column:amount_cents;not null"`
	Memo        string              `gorm:"column:memo;not null"`
	Mode        enums.PaymentMode   `gorm:"column:mode;not null"`
	Status      enums.PaymentStatus `gorm:"column:status;not null;default:'pending';index"`
	ExpiresAt   time.Time           `gorm:"column:expires_at;not null"`
	CompletedAt *time.Time          `gorm:"column:completed_at"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

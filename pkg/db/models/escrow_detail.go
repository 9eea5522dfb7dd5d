package models

import (
	"time"

	"github.com/google/uuid"
)

// EscrowDetail extends an escrow-mode PaymentRequest with arbitration state.
// Funds are locked into platform custody at creation and stay locked until
// release or cancellation.
type EscrowDetail struct {
	PaymentID        uint64     `gorm:"column:payment_id;primaryKey;autoIncrement:false"`
	Arbiter          uuid.UUID  `gorm:"column:arbiter;type:uuid;not null"`
	ReleaseCondition string     `gorm:"column:release_condition;not null"`
	DisputeDeadline  time.Time  `gorm:"column:dispute_deadline;not null"`
	Disputed         bool       `gorm:"column:disputed;not null;default:false"`
	DisputeReason    *string    `gorm:"column:dispute_reason"`
	LockedCents      int64      `gorm:"column:locked_cents;not null"`
	DisputedAt       *time.Time `gorm:"column:disputed_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupParticipant is one member's share of a PaymentGroup, keyed by
// (group, account). The owed amount is the floor split of the group total;
// any remainder is deliberately never collected.
type GroupParticipant struct {
	GroupID    uint64     `gorm:"column:group_id;primaryKey;autoIncrement:false"`
	AccountID  uuid.UUID  `gorm:"column:account_id;type:uuid;primaryKey"`
	OwedCents  int64      `gorm:"column:owed_cents;not null"`
	PaidCents  int64      `gorm:"column:paid_cents;not null;default:0"`
	Paid       bool       `gorm:"column:paid;not null;default:false"`
	PaidAt     *time.Time `gorm:"column:paid_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

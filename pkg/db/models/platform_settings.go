package models

import (
	"time"

	"github.com/google/uuid"
)

// PlatformSettingsID is the key of the singleton settings row.
const PlatformSettingsID = 1

// MaxFeeRateBps caps the platform fee at 5%.
const MaxFeeRateBps = 500

// PlatformSettings is the durable process-wide configuration consulted by
// every mutating ledger operation. Mutated only through owner-gated admin
// operations.
type PlatformSettings struct {
	ID             int       `gorm:"column:id;primaryKey;autoIncrement:false"`
	Owner          uuid.UUID `gorm:"column:owner;type:uuid;not null"`
	FeeAccount     uuid.UUID `gorm:"column:fee_account;type:uuid;not null"`
	CustodyAccount uuid.UUID `gorm:"column:custody_account;type:uuid;not null"`
	FeeRateBps     int64     `gorm:"column:fee_rate_bps;not null"`
	MinAmountCents int64     `gorm:"column:min_amount_cents;not null"`
	MaxAmountCents int64     `gorm:"column:max_amount_cents;not null"`
	Paused         bool      `gorm:"column:paused;not null;default:false"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the singular table name used by the migrations.
func (PlatformSettings) TableName() string {
	return "platform_settings"
}

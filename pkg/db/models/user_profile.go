package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultReputationScore = 100

// UserProfile accumulates per-account settlement statistics. Rows are created
// lazily the first time an account touches the ledger and are never deleted.
type UserProfile struct {
	AccountID          uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey"`
	TotalSentCents     int64     `gorm:"column:total_sent_cents;not null;default:0"`
	TotalReceivedCents int64     `gorm:"column:total_received_cents;not null;default:0"`
	TxCount            int64     `gorm:"column:tx_count;not null;default:0"`
	ReputationScore    int       `gorm:"column:reputation_score;not null"`
	Verified           bool      `gorm:"column:verified;not null;default:false"`
	RegisteredAt       time.Time `gorm:"column:registered_at;not null"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

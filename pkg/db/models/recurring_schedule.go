package models

import (
	"time"

	"github.com/google/uuid"
)

// RecurringSchedule models a repeating obligation between two accounts. Each
// execution settles exactly one installment and advances the cursor by the
// frequency; the schedule deactivates when the last installment settles.
type RecurringSchedule struct {
	ID                    uint64        `gorm:"column:id;primaryKey;autoIncrement:false"`
	Payer                 uuid.UUID     `gorm:"column:payer;type:uuid;not null;index"`
	Recipient             uuid.UUID     `gorm:"column:recipient;type:uuid;not null"`
	AmountCents           int64         `gorm:"column:amount_cents;not null"`
	Frequency             time.Duration `gorm:"column:frequency_ns;not null"`
	NextPaymentAt         time.Time     `gorm:"column:next_payment_at;not null;index"`
	TotalInstallments     int           `gorm:"column:total_installments;not null"`
	CompletedInstallments int           `gorm:"column:completed_installments;not null;default:0"`
	Active                bool          `gorm:"column:active;not null;default:true;index"`
	CreatedAt             time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxGroupParticipants caps the size of a bill split.
const MaxGroupParticipants = 10

// PaymentGroup is an N-way bill split: one aggregate obligation decomposed
// into per-participant dues that settle independently toward the creator.
type PaymentGroup struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Creator          uuid.UUID `gorm:"column:creator;type:uuid;not null;index"`
	TotalCents       int64     `gorm:"column:total_cents;not null"`
	PaidCents        int64     `gorm:"column:paid_cents;not null;default:0"`
	ParticipantCount int       `gorm:"column:participant_count;not null"`
	Deadline         time.Time `gorm:"column:deadline;not null"`
	Completed        bool      `gorm:"column:completed;not null;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/pkg/enums"
)

// OutboxDLQ parks outbox rows that exhausted their publish attempts or
// failed a non-retryable decode.
type OutboxDLQ struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID       uuid.UUID                 `gorm:"column:event_id;type:uuid;not null;uniqueIndex"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;not null"`
	AggregateID   uint64                    `gorm:"column:aggregate_id;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null"`
	ErrorMessage  *string                   `gorm:"column:error_message"`
	FailedAt      time.Time                 `gorm:"column:failed_at;autoCreateTime"`
}

// TableName keeps the table name used by the migrations.
func (OutboxDLQ) TableName() string {
	return "outbox_dlq"
}

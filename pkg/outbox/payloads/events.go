package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/payflow-backend/pkg/enums"
)

// PaymentRequestedEvent announces a newly created pending payment request.
type PaymentRequestedEvent struct {
	PaymentID   uint64            `json:"payment_id"`
	Sender      uuid.UUID         `json:"sender"`
	Recipient   uuid.UUID         `json:"recipient"`
	AmountCents int64             `json:"amount_cents"`
	Mode        enums.PaymentMode `json:"mode"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// PaymentSettledEvent reports a settled transfer and its fee breakdown.
// PaymentID is zero for instant payments, which never persist a request.
type PaymentSettledEvent struct {
	TransactionID uint64            `json:"transaction_id"`
	PaymentID     uint64            `json:"payment_id,omitempty"`
	Sender        uuid.UUID         `json:"sender"`
	Recipient     uuid.UUID         `json:"recipient"`
	NetCents      int64             `json:"net_cents"`
	FeeCents      int64             `json:"fee_cents"`
	Mode          enums.PaymentMode `json:"mode"`
	SettledAt     time.Time         `json:"settled_at"`
}

// PaymentCancelledEvent is emitted when a sender cancels a pending request.
type PaymentCancelledEvent struct {
	PaymentID     uint64    `json:"payment_id"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	RefundedCents int64     `json:"refunded_cents,omitempty"`
	CancelledAt   time.Time `json:"cancelled_at"`
}

// PaymentExpiredEvent is emitted by the expiry sweep for stale requests.
type PaymentExpiredEvent struct {
	PaymentID uint64    `json:"payment_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

// EscrowDisputedEvent freezes release of an escrowed payment.
type EscrowDisputedEvent struct {
	PaymentID  uint64    `json:"payment_id"`
	DisputedBy uuid.UUID `json:"disputed_by"`
	Reason     string    `json:"reason,omitempty"`
	DisputedAt time.Time `json:"disputed_at"`
}

// GroupCompletedEvent reports that every tracked share of a split was paid.
type GroupCompletedEvent struct {
	GroupID     uint64    `json:"group_id"`
	TotalCents  int64     `json:"total_cents"`
	PaidCents   int64     `json:"paid_cents"`
	CompletedAt time.Time `json:"completed_at"`
}

// ScheduleFinishedEvent reports that a recurring schedule settled its last
// installment and deactivated.
type ScheduleFinishedEvent struct {
	ScheduleID   uint64    `json:"schedule_id"`
	Installments int       `json:"installments"`
	FinishedAt   time.Time `json:"finished_at"`
}

package enums

// OutboxEventType enumerates the domain events the engine emits.
type OutboxEventType string

const (
	EventPaymentRequested OutboxEventType = "payment.requested"
	EventPaymentSettled   OutboxEventType = "payment.settled"
	EventPaymentCancelled OutboxEventType = "payment.cancelled"
	EventPaymentExpired   OutboxEventType = "payment.expired"
	EventEscrowDisputed   OutboxEventType = "escrow.disputed"
	EventGroupCompleted   OutboxEventType = "group.completed"
	EventScheduleFinished OutboxEventType = "schedule.finished"
)

var validOutboxEventTypes = []OutboxEventType{
	EventPaymentRequested,
	EventPaymentSettled,
	EventPaymentCancelled,
	EventPaymentExpired,
	EventEscrowDisputed,
	EventGroupCompleted,
	EventScheduleFinished,
}

// IsValid reports whether the value is a known OutboxEventType.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// OutboxAggregateType names the entity an outbox event is anchored to.
type OutboxAggregateType string

const (
	AggregatePaymentRequest    OutboxAggregateType = "payment_request"
	AggregateRecurringSchedule OutboxAggregateType = "recurring_schedule"
	AggregatePaymentGroup      OutboxAggregateType = "payment_group"
	AggregateTransaction       OutboxAggregateType = "transaction"
)

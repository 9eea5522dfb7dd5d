package models

// Sequence names for the four id allocators.
const (
	SequencePayment     = "payment"
	SequenceSchedule    = "schedule"
	SequenceGroup       = "group"
	SequenceTransaction = "transaction"
)

// Sequence is one durable monotonic counter.
type Sequence struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value uint64 `gorm:"column:value;not null;default:0"`
}

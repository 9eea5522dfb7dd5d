package enums

// SettlementRole distinguishes which side of a transfer a profile update is for.
type SettlementRole string

const (
	SettlementRoleSender    SettlementRole = "sender"
	SettlementRoleRecipient SettlementRole = "recipient"
)

// IsValid reports whether the value is a known SettlementRole.
func (r SettlementRole) IsValid() bool {
	return r == SettlementRoleSender || r == SettlementRoleRecipient
}

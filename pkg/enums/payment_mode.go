package enums

import "fmt"

// PaymentMode tags how a movement of funds was initiated.
type PaymentMode string

const (
	PaymentModeInstant   PaymentMode = "instant"
	PaymentModeScheduled PaymentMode = "scheduled"
	PaymentModeEscrow    PaymentMode = "escrow"
	PaymentModeGroup     PaymentMode = "group"
)

var validPaymentModes = []PaymentMode{
	PaymentModeInstant,
	PaymentModeScheduled,
	PaymentModeEscrow,
	PaymentModeGroup,
}

// requestModes are the modes a persisted payment request may carry.
var requestModes = []PaymentMode{
	PaymentModeInstant,
	PaymentModeScheduled,
	PaymentModeEscrow,
}

// String implements fmt.Stringer.
func (m PaymentMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PaymentMode.
func (m PaymentMode) IsValid() bool {
	for _, candidate := range validPaymentModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsRequestMode reports whether a payment request may be created in this mode.
func (m PaymentMode) IsRequestMode() bool {
	for _, candidate := range requestModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePaymentMode converts raw input into a PaymentMode.
func ParsePaymentMode(value string) (PaymentMode, error) {
	for _, candidate := range validPaymentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment mode %q", value)
}

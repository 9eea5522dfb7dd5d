package fees

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
)

// RateDenominator is the basis-point scale of the platform fee rate.
const RateDenominator = 10_000

// Breakdown is the exact split of a gross amount into platform fee and the
// net the counterparty receives. FeeCents + NetCents always equals the gross.
type Breakdown struct {
	FeeCents int64
	NetCents int64
}

// Split computes fee = floor(amount * rateBps / 10000) and net = amount - fee.
// Decimal arithmetic keeps the product exact for amounts near the int64 range.
func Split(amountCents, rateBps int64) Breakdown {
	if amountCents <= 0 || rateBps <= 0 {
		return Breakdown{FeeCents: 0, NetCents: amountCents}
	}

	fee := decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromInt(rateBps)).
		Div(decimal.NewFromInt(RateDenominator)).
		Floor().
		IntPart()

	return Breakdown{FeeCents: fee, NetCents: amountCents - fee}
}

// WithinLimits reports whether the amount satisfies the configured bounds.
func WithinLimits(amountCents, minCents, maxCents int64) bool {
	return amountCents >= minCents && amountCents <= maxCents
}

// CheckAmount returns the canonical InvalidAmount error when the amount is
// outside the configured bounds.
func CheckAmount(amountCents, minCents, maxCents int64) error {
	if WithinLimits(amountCents, minCents, maxCents) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeInvalidAmount, "amount outside configured bounds").
		WithDetails(map[string]int64{
			"amount_cents": amountCents,
			"min_cents":    minCents,
			"max_cents":    maxCents,
		})
}

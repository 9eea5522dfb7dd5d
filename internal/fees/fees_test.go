package fees

import (
	"math"
	"testing"

	pkgerrors "github.com/angelmondragon/payflow-backend/pkg/errors"
)

func TestSplitMatchesFloorFormula(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		rateBps int64
		fee     int64
	}{
		{"typical", 5_000_000, 25, 12_500},
		{"rounds down", 999, 25, 2},
		{"tiny amount", 1, 25, 0},
		{"one bp", 10_000, 1, 1},
		{"sub-bp floor", 9_999, 1, 0},
		{"max rate", 1_000_000, 500, 50_000},
		{"near int64 range", math.MaxInt64 / 2, 500, (math.MaxInt64 / 2) / 20},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Split(tc.amount, tc.rateBps)
			if got.FeeCents != tc.fee {
				t.Fatalf("fee = %d, want %d", got.FeeCents, tc.fee)
			}
			if got.FeeCents+got.NetCents != tc.amount {
				t.Fatalf("fee %d + net %d != amount %d", got.FeeCents, got.NetCents, tc.amount)
			}
		})
	}
}

func TestSplitScenarioNet(t *testing.T) {
	got := Split(5_000_000, 25)
	if got.NetCents != 4_987_500 {
		t.Fatalf("net = %d, want 4987500", got.NetCents)
	}
}

func TestSplitZeroRate(t *testing.T) {
	got := Split(1_000_000, 0)
	if got.FeeCents != 0 || got.NetCents != 1_000_000 {
		t.Fatalf("zero rate should pass the full amount through, got %+v", got)
	}
}

func TestWithinLimits(t *testing.T) {
	if !WithinLimits(1000, 1000, 2000) {
		t.Fatal("lower bound should be inclusive")
	}
	if !WithinLimits(2000, 1000, 2000) {
		t.Fatal("upper bound should be inclusive")
	}
	if WithinLimits(999, 1000, 2000) || WithinLimits(2001, 1000, 2000) {
		t.Fatal("out-of-range amounts accepted")
	}
}

func TestCheckAmount(t *testing.T) {
	if err := CheckAmount(1500, 1000, 2000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := CheckAmount(100, 1000, 2000)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvalidAmount) {
		t.Fatalf("expected INVALID_AMOUNT, got %v", err)
	}
}

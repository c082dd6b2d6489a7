package split

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func members(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

// TestSharesEqualSplit checks the 100 across payer+3 case: each non-payer
// owes 25.00 and the payer is owed 75.00.
func TestSharesEqualSplit(t *testing.T) {
	ids := members(4)
	payer := ids[0]
	amount := decimal.RequireFromString("100")

	shares, residual, err := Shares(amount, payer, ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(shares))
	}

	want := decimal.RequireFromString("25.00")
	total := residual
	for _, share := range shares {
		if !share.Amount.Equal(want) {
			t.Fatalf("expected share 25.00, got %s", share.Amount)
		}
		total = total.Add(share.Amount)
	}

	if !residual.Equal(want) {
		t.Fatalf("expected payer residual 25.00, got %s", residual)
	}
	if !total.Equal(amount) {
		t.Fatalf("shares plus residual = %s, want %s", total, amount)
	}

	owed, err := OwedToPayer(amount, payer, ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !owed.Equal(decimal.RequireFromString("75.00")) {
		t.Fatalf("expected owed 75.00, got %s", owed)
	}
}

// TestSharesRoundingResidual checks half-up rounding and the reconciliation
// of the remainder into the payer's retained amount.
func TestSharesRoundingResidual(t *testing.T) {
	ids := members(3)
	payer := ids[0]
	amount := decimal.RequireFromString("100")

	shares, residual, err := Shares(amount, payer, ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 100/3 = 33.333..., half-up at two places -> 33.33 per non-payer.
	want := decimal.RequireFromString("33.33")
	total := residual
	for _, share := range shares {
		if !share.Amount.Equal(want) {
			t.Fatalf("expected share 33.33, got %s", share.Amount)
		}
		total = total.Add(share.Amount)
	}

	if !residual.Equal(decimal.RequireFromString("33.34")) {
		t.Fatalf("expected residual 33.34, got %s", residual)
	}
	if !total.Equal(amount) {
		t.Fatalf("shares plus residual = %s, want %s", total, amount)
	}
}

// TestSharesHalfUp checks the half-up direction on an exact .005 boundary.
func TestSharesHalfUp(t *testing.T) {
	ids := members(2)
	payer := ids[0]

	// 0.01/2 = 0.005 -> 0.01 under half-up.
	shares, residual, err := Shares(decimal.RequireFromString("0.01"), payer, ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !shares[0].Amount.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("expected share 0.01, got %s", shares[0].Amount)
	}
	if !residual.IsZero() {
		t.Fatalf("expected zero residual, got %s", residual)
	}
}

// TestOwedToPayerSoloGroup checks a payer-only group owes nothing.
func TestOwedToPayerSoloGroup(t *testing.T) {
	payer := uuid.New()

	owed, err := OwedToPayer(decimal.RequireFromString("42.50"), payer, []uuid.UUID{payer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !owed.IsZero() {
		t.Fatalf("expected zero owed, got %s", owed)
	}
}

// TestSharesPayerNotMember checks malformed state errors instead of silently
// returning zero.
func TestSharesPayerNotMember(t *testing.T) {
	ids := members(3)

	_, _, err := Shares(decimal.RequireFromString("10"), uuid.New(), ids)
	if !errors.Is(err, ErrPayerNotMember) {
		t.Fatalf("expected ErrPayerNotMember, got %v", err)
	}
}

// TestSharesNegativeAmount checks negative amounts are rejected.
func TestSharesNegativeAmount(t *testing.T) {
	ids := members(2)

	_, _, err := Shares(decimal.RequireFromString("-1"), ids[0], ids)
	if !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

// TestOwedToPayerMembershipFresh checks owed amounts follow the membership
// passed at call time, not any earlier snapshot.
func TestOwedToPayerMembershipFresh(t *testing.T) {
	payer := uuid.New()
	amount := decimal.RequireFromString("90")

	before := append([]uuid.UUID{payer}, members(2)...)
	owedBefore, err := OwedToPayer(amount, payer, before)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !owedBefore.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("expected 60.00 with three members, got %s", owedBefore)
	}

	after := append([]uuid.UUID{payer}, members(5)...)
	owedAfter, err := OwedToPayer(amount, payer, after)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !owedAfter.Equal(decimal.RequireFromString("75.00")) {
		t.Fatalf("expected 75.00 with six members, got %s", owedAfter)
	}
}

// Package split computes equal-share obligations for group expenses.
//
// All arithmetic is exact decimal; rounding to the smallest currency unit
// happens only when materializing per-user shares, and the rounding remainder
// stays with the payer so shares always reconcile to the expense amount.
package split

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// currencyPlaces is the smallest currency unit exponent (paise/cents).
const currencyPlaces = 2

var (
	// ErrPayerNotMember signals an expense whose payer is outside the group
	// it is being split across.
	ErrPayerNotMember = errors.New("payer is not a group member")

	// ErrNotSplittable signals an expense that is not in a splittable state:
	// no group, or splitting disabled.
	ErrNotSplittable = errors.New("expense is not splittable")

	// ErrNegativeAmount signals a negative expense amount. Amounts are
	// validated at the boundary, so hitting this is an invariant violation.
	ErrNegativeAmount = errors.New("expense amount is negative")
)

// Share is one user's portion of a split expense.
type Share struct {
	UserID uuid.UUID
	Amount decimal.Decimal
}

// OwedToPayer returns the total the payer is entitled to collect back:
// amount × N/(N+1) where N is the member count excluding the payer. Members
// must be the group's membership as of now, never a stored snapshot.
func OwedToPayer(amount decimal.Decimal, payerID uuid.UUID, memberIDs []uuid.UUID) (decimal.Decimal, error) {
	shares, _, err := Shares(amount, payerID, memberIDs)
	if err != nil {
		return decimal.Zero, err
	}

	owed := decimal.Zero
	for _, share := range shares {
		owed = owed.Add(share.Amount)
	}

	if owed.IsNegative() {
		return decimal.Zero, fmt.Errorf("computed owed amount %s: %w", owed, ErrNegativeAmount)
	}
	return owed, nil
}

// Shares splits amount equally across the group: each non-payer owes
// round-half-up(amount/(N+1)) at currency precision, and the payer retains
// the exact remainder, so payer residual plus all shares equals amount.
// An empty or payer-only member list yields no shares and the full residual.
func Shares(amount decimal.Decimal, payerID uuid.UUID, memberIDs []uuid.UUID) ([]Share, decimal.Decimal, error) {
	if amount.IsNegative() {
		return nil, decimal.Zero, ErrNegativeAmount
	}

	payerFound := false
	others := make([]uuid.UUID, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id == payerID {
			payerFound = true
			continue
		}
		others = append(others, id)
	}
	if !payerFound {
		return nil, decimal.Zero, ErrPayerNotMember
	}

	if len(others) == 0 {
		return nil, amount, nil
	}

	// Equal split among N non-payers plus the payer.
	perHead := amount.Div(decimal.NewFromInt(int64(len(others) + 1)))
	// decimal.Round is half-up for positive values, which is the policy for
	// materialized currency shares.
	rounded := perHead.Round(currencyPlaces)

	shares := make([]Share, 0, len(others))
	collected := decimal.Zero
	for _, id := range others {
		shares = append(shares, Share{UserID: id, Amount: rounded})
		collected = collected.Add(rounded)
	}

	residual := amount.Sub(collected)
	if residual.IsNegative() {
		return nil, decimal.Zero, fmt.Errorf("payer residual %s: %w", residual, ErrNegativeAmount)
	}

	return shares, residual, nil
}

package summary

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/splitmyexpenses/backend/internal/models"
)

type fakeExpenses struct {
	expenses []models.Expense
	names    map[uuid.UUID]string
}

func (f *fakeExpenses) ListRelevant(ctx context.Context, userID uuid.UUID) ([]models.Expense, error) {
	return f.expenses, nil
}

func (f *fakeExpenses) CategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	return f.names, nil
}

type fakeGroups struct {
	members map[uuid.UUID][]uuid.UUID
}

func (f *fakeGroups) MemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	return f.members[groupID], nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// TestSummarizeCategoryBreakdown checks the 50+30 Food case: one bucket with
// total 80 and count 2, and matching top-level totals.
func TestSummarizeCategoryBreakdown(t *testing.T) {
	user := uuid.New()
	food := uuid.New()
	asOf := date(2025, time.March, 15)

	source := &fakeExpenses{
		expenses: []models.Expense{
			{ID: uuid.New(), Amount: dec("50"), Date: date(2025, time.March, 2), CategoryID: &food, PaidBy: user, CreatedBy: user},
			{ID: uuid.New(), Amount: dec("30"), Date: date(2025, time.March, 9), CategoryID: &food, PaidBy: user, CreatedBy: user},
		},
		names: map[uuid.UUID]string{food: "Food"},
	}

	result, err := NewSummarizer(source, &fakeGroups{}, quietLogger()).Summarize(context.Background(), user, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Total.Equal(dec("80")) {
		t.Fatalf("expected total 80, got %s", result.Total)
	}
	if result.Count != 2 {
		t.Fatalf("expected count 2, got %d", result.Count)
	}
	if len(result.Categories) != 1 {
		t.Fatalf("expected one category, got %d", len(result.Categories))
	}
	row := result.Categories[0]
	if row.Name != "Food" || !row.Total.Equal(dec("80")) || row.Count != 2 {
		t.Fatalf("unexpected breakdown row: %+v", row)
	}
}

// TestSummarizeBreakdownOrder checks totals descending with name ascending
// tie-break, and the Uncategorized bucket.
func TestSummarizeBreakdownOrder(t *testing.T) {
	user := uuid.New()
	food := uuid.New()
	bills := uuid.New()
	travel := uuid.New()

	source := &fakeExpenses{
		expenses: []models.Expense{
			{ID: uuid.New(), Amount: dec("40"), Date: date(2025, time.May, 1), CategoryID: &bills, PaidBy: user, CreatedBy: user},
			{ID: uuid.New(), Amount: dec("40"), Date: date(2025, time.May, 2), CategoryID: &travel, PaidBy: user, CreatedBy: user},
			{ID: uuid.New(), Amount: dec("100"), Date: date(2025, time.May, 3), CategoryID: &food, PaidBy: user, CreatedBy: user},
			{ID: uuid.New(), Amount: dec("5"), Date: date(2025, time.May, 4), PaidBy: user, CreatedBy: user},
		},
		names: map[uuid.UUID]string{food: "Food", bills: "Bills", travel: "Travel"},
	}

	result, err := NewSummarizer(source, &fakeGroups{}, quietLogger()).Summarize(context.Background(), user, date(2025, time.May, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make([]string, 0, len(result.Categories))
	for _, row := range result.Categories {
		got = append(got, row.Name)
	}
	want := []string{"Food", "Bills", "Travel", Uncategorized}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// TestSummarizeMonthWindow checks the calendar-month slice uses asOf's year
// and month, first day inclusive.
func TestSummarizeMonthWindow(t *testing.T) {
	user := uuid.New()

	source := &fakeExpenses{
		expenses: []models.Expense{
			{ID: uuid.New(), Amount: dec("10"), Date: date(2025, time.February, 28), PaidBy: user, CreatedBy: user},
			{ID: uuid.New(), Amount: dec("20"), Date: date(2025, time.March, 1), PaidBy: user, CreatedBy: user},
			{ID: uuid.New(), Amount: dec("30"), Date: date(2025, time.March, 31), PaidBy: user, CreatedBy: user},
			{ID: uuid.New(), Amount: dec("40"), Date: date(2024, time.March, 10), PaidBy: user, CreatedBy: user},
		},
	}

	result, err := NewSummarizer(source, &fakeGroups{}, quietLogger()).Summarize(context.Background(), user, date(2025, time.March, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.MonthTotal.Equal(dec("50")) {
		t.Fatalf("expected month total 50, got %s", result.MonthTotal)
	}
	if !result.Total.Equal(dec("100")) {
		t.Fatalf("expected total 100, got %s", result.Total)
	}
}

// TestSummarizeOwedToUser checks owed aggregation across split and unsplit
// expenses.
func TestSummarizeOwedToUser(t *testing.T) {
	user := uuid.New()
	group := uuid.New()
	others := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	source := &fakeExpenses{
		expenses: []models.Expense{
			// Split across payer+3: owed 75.00.
			{ID: uuid.New(), Amount: dec("100"), Date: date(2025, time.June, 1), GroupID: &group, PaidBy: user, CreatedBy: user, IsSplit: true},
			// Not split: contributes nothing.
			{ID: uuid.New(), Amount: dec("100"), Date: date(2025, time.June, 2), GroupID: &group, PaidBy: user, CreatedBy: user},
			// Paid by someone else: contributes nothing.
			{ID: uuid.New(), Amount: dec("100"), Date: date(2025, time.June, 3), GroupID: &group, PaidBy: others[0], CreatedBy: user, IsSplit: true},
			// No group: contributes nothing.
			{ID: uuid.New(), Amount: dec("100"), Date: date(2025, time.June, 4), PaidBy: user, CreatedBy: user, IsSplit: true},
		},
	}
	groups := &fakeGroups{members: map[uuid.UUID][]uuid.UUID{
		group: append([]uuid.UUID{user}, others...),
	}}

	result, err := NewSummarizer(source, groups, quietLogger()).Summarize(context.Background(), user, date(2025, time.June, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.OwedToUser.Equal(dec("75.00")) {
		t.Fatalf("expected owed 75.00, got %s", result.OwedToUser)
	}
	if result.Skipped != 0 {
		t.Fatalf("expected no skipped expenses, got %d", result.Skipped)
	}
}

// TestSummarizeMembershipFreshness checks owed amounts follow current group
// membership rather than membership at expense creation.
func TestSummarizeMembershipFreshness(t *testing.T) {
	user := uuid.New()
	group := uuid.New()

	source := &fakeExpenses{
		expenses: []models.Expense{
			{ID: uuid.New(), Amount: dec("90"), Date: date(2025, time.July, 1), GroupID: &group, PaidBy: user, CreatedBy: user, IsSplit: true},
		},
	}
	groups := &fakeGroups{members: map[uuid.UUID][]uuid.UUID{
		group: {user, uuid.New(), uuid.New()},
	}}

	summarizer := NewSummarizer(source, groups, quietLogger())
	asOf := date(2025, time.July, 15)

	result, err := summarizer.Summarize(context.Background(), user, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OwedToUser.Equal(dec("60.00")) {
		t.Fatalf("expected 60.00 with three members, got %s", result.OwedToUser)
	}

	// A member joins; the same expense now splits six ways.
	groups.members[group] = append(groups.members[group], uuid.New(), uuid.New(), uuid.New())

	result, err = summarizer.Summarize(context.Background(), user, asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OwedToUser.Equal(dec("75.00")) {
		t.Fatalf("expected 75.00 with six members, got %s", result.OwedToUser)
	}
}

// TestSummarizeSkipsMalformed checks a payer outside the group is skipped and
// counted while valid expenses still aggregate.
func TestSummarizeSkipsMalformed(t *testing.T) {
	user := uuid.New()
	good := uuid.New()
	bad := uuid.New()

	source := &fakeExpenses{
		expenses: []models.Expense{
			{ID: uuid.New(), Amount: dec("60"), Date: date(2025, time.August, 1), GroupID: &good, PaidBy: user, CreatedBy: user, IsSplit: true},
			{ID: uuid.New(), Amount: dec("99"), Date: date(2025, time.August, 2), GroupID: &bad, PaidBy: user, CreatedBy: user, IsSplit: true},
		},
	}
	groups := &fakeGroups{members: map[uuid.UUID][]uuid.UUID{
		good: {user, uuid.New()},
		bad:  {uuid.New()}, // payer missing: malformed state
	}}

	result, err := NewSummarizer(source, groups, quietLogger()).Summarize(context.Background(), user, date(2025, time.August, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Skipped != 1 {
		t.Fatalf("expected one skipped expense, got %d", result.Skipped)
	}
	if !result.OwedToUser.Equal(dec("30.00")) {
		t.Fatalf("expected owed 30.00 from the valid expense, got %s", result.OwedToUser)
	}
	// Totals still include the malformed expense's amount.
	if !result.Total.Equal(dec("159")) {
		t.Fatalf("expected total 159, got %s", result.Total)
	}
}

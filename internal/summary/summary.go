// Package summary folds a user's relevant expenses into one spending report.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/splitmyexpenses/backend/internal/models"
	"example.com/splitmyexpenses/backend/internal/split"
)

// Uncategorized labels expenses without a catalog category in breakdowns.
const Uncategorized = "Uncategorized"

// ExpenseSource yields the expenses relevant to a user: created by them, paid
// by them, or belonging to a group they are a member of, deduplicated.
type ExpenseSource interface {
	ListRelevant(ctx context.Context, userID uuid.UUID) ([]models.Expense, error)
	CategoryNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// MembershipSource yields the current members of a group. It is consulted per
// expense at summary time so owed amounts always track live membership.
type MembershipSource interface {
	MemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

// CategoryTotal is one row of the per-category breakdown.
type CategoryTotal struct {
	Name  string          `json:"category"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Summary is the aggregation result for one user as of a given date.
type Summary struct {
	Total      decimal.Decimal `json:"total_expenses"`
	MonthTotal decimal.Decimal `json:"month_expenses"`
	Count      int             `json:"total_count"`
	Categories []CategoryTotal `json:"category_breakdown"`
	OwedToUser decimal.Decimal `json:"owed_amount"`
	Skipped    int             `json:"skipped_count"`
}

type Summarizer struct {
	expenses ExpenseSource
	groups   MembershipSource
	logger   *slog.Logger
}

// NewSummarizer builds the aggregator over its two data sources.
func NewSummarizer(expenses ExpenseSource, groups MembershipSource, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{expenses: expenses, groups: groups, logger: logger}
}

// Summarize computes totals, the calendar-month slice containing asOf, the
// per-category breakdown and the amount owed to the user. Malformed expenses
// are counted in Skipped and do not abort the aggregation.
func (s *Summarizer) Summarize(ctx context.Context, userID uuid.UUID, asOf time.Time) (Summary, error) {
	expenses, err := s.expenses.ListRelevant(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("list relevant expenses: %w", err)
	}

	categoryIDs := make([]uuid.UUID, 0, len(expenses))
	seen := make(map[uuid.UUID]struct{})
	for _, expense := range expenses {
		if expense.CategoryID == nil {
			continue
		}
		if _, ok := seen[*expense.CategoryID]; ok {
			continue
		}
		seen[*expense.CategoryID] = struct{}{}
		categoryIDs = append(categoryIDs, *expense.CategoryID)
	}

	names, err := s.expenses.CategoryNames(ctx, categoryIDs)
	if err != nil {
		return Summary{}, fmt.Errorf("resolve category names: %w", err)
	}

	result := Summary{
		Total:      decimal.Zero,
		MonthTotal: decimal.Zero,
		OwedToUser: decimal.Zero,
	}

	type bucket struct {
		total decimal.Decimal
		count int
	}
	buckets := make(map[string]*bucket)

	// Membership per group is fetched once per summary call; within one call
	// that is "fresh" enough, across calls it always reflects the latest state.
	membership := make(map[uuid.UUID][]uuid.UUID)

	for _, expense := range expenses {
		result.Total = result.Total.Add(expense.Amount)
		result.Count++

		if sameMonth(expense.Date, asOf) {
			result.MonthTotal = result.MonthTotal.Add(expense.Amount)
		}

		name := Uncategorized
		if expense.CategoryID != nil {
			if resolved, ok := names[*expense.CategoryID]; ok {
				name = resolved
			}
		}
		b, ok := buckets[name]
		if !ok {
			b = &bucket{total: decimal.Zero}
			buckets[name] = b
		}
		b.total = b.total.Add(expense.Amount)
		b.count++

		owed, err := s.owedToPayer(ctx, userID, expense, membership)
		if err != nil {
			result.Skipped++
			s.logger.Warn("skipping expense in owed computation",
				slog.String("expense_id", expense.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		result.OwedToUser = result.OwedToUser.Add(owed)
	}

	result.Categories = make([]CategoryTotal, 0, len(buckets))
	for name, b := range buckets {
		result.Categories = append(result.Categories, CategoryTotal{Name: name, Total: b.total, Count: b.count})
	}
	sort.Slice(result.Categories, func(i, j int) bool {
		left, right := result.Categories[i], result.Categories[j]
		if !left.Total.Equal(right.Total) {
			return left.Total.GreaterThan(right.Total)
		}
		return left.Name < right.Name
	})

	return result, nil
}

// owedToPayer contributes zero for expenses the user did not pay, unshared
// expenses and group-less expenses, and delegates the rest to the split
// engine with live membership.
func (s *Summarizer) owedToPayer(ctx context.Context, userID uuid.UUID, expense models.Expense, membership map[uuid.UUID][]uuid.UUID) (decimal.Decimal, error) {
	if expense.PaidBy != userID || !expense.IsSplit || expense.GroupID == nil {
		return decimal.Zero, nil
	}

	memberIDs, ok := membership[*expense.GroupID]
	if !ok {
		fetched, err := s.groups.MemberIDs(ctx, *expense.GroupID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("fetch members of group %s: %w", expense.GroupID, err)
		}
		membership[*expense.GroupID] = fetched
		memberIDs = fetched
	}

	owed, err := split.OwedToPayer(expense.Amount, expense.PaidBy, memberIDs)
	if err != nil {
		return decimal.Zero, err
	}
	return owed, nil
}

func sameMonth(date, asOf time.Time) bool {
	return date.Year() == asOf.Year() && date.Month() == asOf.Month()
}

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/splitmyexpenses/backend/internal/auth"
	"example.com/splitmyexpenses/backend/internal/models"
	"example.com/splitmyexpenses/backend/internal/repository"
	"example.com/splitmyexpenses/backend/internal/split"
)

type SplitHandler struct {
	Expenses *repository.ExpenseRepository
	Groups   *repository.GroupRepository
	Splits   *repository.SplitRepository
}

// NewSplitHandler creates the split handler.
func NewSplitHandler(
	expenses *repository.ExpenseRepository,
	groups *repository.GroupRepository,
	splits *repository.SplitRepository,
) *SplitHandler {
	return &SplitHandler{Expenses: expenses, Groups: groups, Splits: splits}
}

type SplitResponse struct {
	ID        uuid.UUID       `json:"id"`
	ExpenseID uuid.UUID       `json:"expense_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Share     decimal.Decimal `json:"share"`
	CreatedAt time.Time       `json:"created_at"`
}

type ExpenseSplitsResponse struct {
	ExpenseID   uuid.UUID       `json:"expense_id"`
	Splits      []SplitResponse `json:"splits"`
	OwedToPayer decimal.Decimal `json:"owed_to_payer"`
}

// ListForExpense computes fresh per-member shares against current group
// membership, persists them, and returns the stored rows.
func (h *SplitHandler) ListForExpense(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	expense, err := h.Expenses.Get(c.Request().Context(), userID, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	if !expense.IsSplit || expense.GroupID == nil {
		return badRequest(c, "expense is not split")
	}

	memberIDs, err := h.Groups.MemberIDs(c.Request().Context(), *expense.GroupID)
	if err != nil {
		return serverError(c)
	}

	shares, _, err := split.Shares(expense.Amount, expense.PaidBy, memberIDs)
	if err != nil {
		if errors.Is(err, split.ErrPayerNotMember) {
			return badRequest(c, "payer is no longer a group member")
		}
		return serverError(c)
	}

	owed, err := split.OwedToPayer(expense.Amount, expense.PaidBy, memberIDs)
	if err != nil {
		return serverError(c)
	}

	stored, err := h.Splits.Replace(c.Request().Context(), expense.ID, shares)
	if err != nil {
		return serverError(c)
	}

	response := ExpenseSplitsResponse{
		ExpenseID:   expense.ID,
		Splits:      make([]SplitResponse, 0, len(stored)),
		OwedToPayer: owed,
	}
	for _, row := range stored {
		response.Splits = append(response.Splits, toSplitResponse(row))
	}

	return c.JSON(http.StatusOK, response)
}

// Mine returns the user's split rows across all expenses.
func (h *SplitHandler) Mine(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	rows, err := h.Splits.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	response := make([]SplitResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, toSplitResponse(row))
	}

	return c.JSON(http.StatusOK, map[string][]SplitResponse{"splits": response})
}

func toSplitResponse(row models.ExpenseSplit) SplitResponse {
	return SplitResponse{
		ID:        row.ID,
		ExpenseID: row.ExpenseID,
		UserID:    row.UserID,
		Share:     row.Share,
		CreatedAt: row.CreatedAt,
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/splitmyexpenses/backend/internal/auth"
	"example.com/splitmyexpenses/backend/internal/classify"
	"example.com/splitmyexpenses/backend/internal/models"
	"example.com/splitmyexpenses/backend/internal/notifications"
	"example.com/splitmyexpenses/backend/internal/repository"
	"example.com/splitmyexpenses/backend/internal/summary"
)

const dateLayout = "2006-01-02"

type ExpenseHandler struct {
	Expenses   *repository.ExpenseRepository
	Groups     *repository.GroupRepository
	Categories *repository.CategoryRepository
	Classifier *classify.Service
	Summarizer *summary.Summarizer
	Notifier   *notifications.Hub
}

// NewExpenseHandler creates the expense handler.
func NewExpenseHandler(
	expenses *repository.ExpenseRepository,
	groups *repository.GroupRepository,
	categories *repository.CategoryRepository,
	classifier *classify.Service,
	summarizer *summary.Summarizer,
	notifier *notifications.Hub,
) *ExpenseHandler {
	return &ExpenseHandler{
		Expenses:   expenses,
		Groups:     groups,
		Categories: categories,
		Classifier: classifier,
		Summarizer: summarizer,
		Notifier:   notifier,
	}
}

type ExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"required,max=500"`
	Date        string          `json:"date"`
	Category    *string         `json:"category"`
	GroupID     *uuid.UUID      `json:"group_id"`
	PaidBy      *uuid.UUID      `json:"paid_by"`
	IsSplit     bool            `json:"is_split"`
}

type DetectCategoryRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Amount      float64 `json:"amount"`
}

type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Category    *string         `json:"category,omitempty"`
	GroupID     *uuid.UUID      `json:"group_id,omitempty"`
	PaidBy      uuid.UUID       `json:"paid_by"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	IsSplit     bool            `json:"is_split"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Create stores an expense. When no category is given the classifier picks
// one; group expenses require membership and a member payer.
func (h *ExpenseHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	expense, errMsg, err := h.buildExpense(c.Request().Context(), userID, req)
	if err != nil {
		return serverError(c)
	}
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	expense.CreatedBy = userID

	stored, err := h.Expenses.Create(c.Request().Context(), expense)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid expense reference")
		}
		return serverError(c)
	}

	h.notifyGroup(c.Request().Context(), stored, notifications.EventExpenseCreated)

	return c.JSON(http.StatusCreated, h.toResponse(c.Request().Context(), stored))
}

// List returns the user's relevant expenses with optional filters.
func (h *ExpenseHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	filter, err := parseExpenseFilter(c.QueryParams().Get)
	if err != nil {
		return badRequest(c, err.Error())
	}

	expenses, err := h.Expenses.List(c.Request().Context(), userID, filter)
	if err != nil {
		return serverError(c)
	}

	names := h.resolveCategoryNames(c.Request().Context(), expenses)

	response := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		response = append(response, toExpenseResponse(expense, names))
	}

	return c.JSON(http.StatusOK, map[string][]ExpenseResponse{"expenses": response})
}

// Get returns one expense the user has access to.
func (h *ExpenseHandler) Get(c echo.Context) error {
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

	return c.JSON(http.StatusOK, h.toResponse(c.Request().Context(), expense))
}

// Update rewrites an expense. Creator only.
func (h *ExpenseHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	expense, errMsg, err := h.buildExpense(c.Request().Context(), userID, req)
	if err != nil {
		return serverError(c)
	}
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	expense.ID = expenseID

	stored, err := h.Expenses.Update(c.Request().Context(), userID, expense)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "expense not found")
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid expense reference")
		}
		return serverError(c)
	}

	h.notifyGroup(c.Request().Context(), stored, notifications.EventExpenseUpdated)

	return c.JSON(http.StatusOK, h.toResponse(c.Request().Context(), stored))
}

// Delete removes an expense. Creator only.
func (h *ExpenseHandler) Delete(c echo.Context) error {
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

	if err := h.Expenses.Delete(c.Request().Context(), userID, expenseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		return serverError(c)
	}

	h.notifyGroup(c.Request().Context(), expense, notifications.EventExpenseDeleted)

	return c.NoContent(http.StatusNoContent)
}

// Summary returns the spending aggregation for the current user. The month
// window defaults to today and can be moved with ?as_of=YYYY-MM-DD.
func (h *ExpenseHandler) Summary(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	asOf, errMsg := parseSummaryAsOf(c.QueryParam("as_of"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}

	result, err := h.Summarizer.Summarize(c.Request().Context(), userID, asOf)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, result)
}

// DetectCategory classifies a description without storing anything.
func (h *ExpenseHandler) DetectCategory(c echo.Context) error {
	if _, ok := auth.UserIDFromContext(c); !ok {
		return unauthorized(c)
	}

	var req DetectCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	result := h.Classifier.Detect(c.Request().Context(), req.Description, req.Amount)

	return c.JSON(http.StatusOK, result)
}

// buildExpense maps a request onto a model, validating amount, date, category,
// group membership and payer. A non-empty message means a client error.
func (h *ExpenseHandler) buildExpense(ctx context.Context, userID uuid.UUID, req ExpenseRequest) (models.Expense, string, error) {
	var expense models.Expense

	if req.Amount.IsNegative() {
		return expense, "amount must not be negative", nil
	}
	expense.Amount = req.Amount

	expense.Description = strings.TrimSpace(req.Description)

	date, errMsg := parseExpenseDate(req.Date)
	if errMsg != "" {
		return expense, errMsg, nil
	}
	expense.Date = date

	if req.GroupID != nil {
		group, err := h.Groups.Get(ctx, *req.GroupID, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return expense, "group not found", nil
			}
			return expense, "", err
		}
		expense.GroupID = &group.ID

		expense.PaidBy = userID
		if req.PaidBy != nil {
			if !containsUUID(group.Members, *req.PaidBy) {
				return expense, "payer is not a group member", nil
			}
			expense.PaidBy = *req.PaidBy
		}
		expense.IsSplit = req.IsSplit
	} else {
		if req.IsSplit {
			return expense, "split expenses require a group", nil
		}
		expense.PaidBy = userID
		if req.PaidBy != nil {
			expense.PaidBy = *req.PaidBy
		}
	}

	categoryName := ""
	if req.Category != nil {
		categoryName = strings.TrimSpace(*req.Category)
	}
	if categoryName == "" && expense.Description != "" {
		amount, _ := expense.Amount.Float64()
		categoryName = h.Classifier.Detect(ctx, expense.Description, amount).Category
	}
	if categoryName != "" {
		category, err := h.Categories.GetByName(ctx, categoryName)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return expense, "unknown category", nil
			}
			return expense, "", err
		}
		expense.CategoryID = &category.ID
	}

	return expense, "", nil
}

// parseExpenseFilter reads list query parameters. The getter indirection keeps
// it testable without an echo context.
func parseExpenseFilter(get func(string) string) (repository.ExpenseFilter, error) {
	var filter repository.ExpenseFilter

	filter.CategoryName = strings.TrimSpace(get("category"))
	filter.GroupName = strings.TrimSpace(get("group"))

	if raw := strings.TrimSpace(get("start_date")); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, errors.New("invalid start_date, expected YYYY-MM-DD")
		}
		filter.StartDate = &date
	}
	if raw := strings.TrimSpace(get("end_date")); raw != "" {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter, errors.New("invalid end_date, expected YYYY-MM-DD")
		}
		filter.EndDate = &date
	}

	return filter, nil
}

// parseSummaryAsOf defaults to the current UTC day so the month window agrees
// with the stored UTC calendar dates regardless of server timezone.
func parseSummaryAsOf(raw string) (time.Time, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC(), ""
	}

	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, "invalid as_of, expected YYYY-MM-DD"
	}
	return date, ""
}

// parseExpenseDate defaults an empty date to today.
func parseExpenseDate(raw string) (time.Time, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), ""
	}

	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, "invalid date, expected YYYY-MM-DD"
	}
	return date, ""
}

func (h *ExpenseHandler) notifyGroup(ctx context.Context, expense models.Expense, eventType string) {
	if h.Notifier == nil || expense.GroupID == nil {
		return
	}

	memberIDs, err := h.Groups.MemberIDs(ctx, *expense.GroupID)
	if err != nil {
		return
	}

	h.Notifier.PublishToMany(memberIDs, notifications.Event{
		Type: eventType,
		Data: map[string]string{
			"expense_id": expense.ID.String(),
			"group_id":   expense.GroupID.String(),
		},
	})
}

func (h *ExpenseHandler) toResponse(ctx context.Context, expense models.Expense) ExpenseResponse {
	names := h.resolveCategoryNames(ctx, []models.Expense{expense})
	return toExpenseResponse(expense, names)
}

func (h *ExpenseHandler) resolveCategoryNames(ctx context.Context, expenses []models.Expense) map[uuid.UUID]string {
	ids := make([]uuid.UUID, 0, len(expenses))
	seen := make(map[uuid.UUID]struct{})
	for _, expense := range expenses {
		if expense.CategoryID == nil {
			continue
		}
		if _, ok := seen[*expense.CategoryID]; ok {
			continue
		}
		seen[*expense.CategoryID] = struct{}{}
		ids = append(ids, *expense.CategoryID)
	}

	names, err := h.Categories.NamesByID(ctx, ids)
	if err != nil {
		return map[uuid.UUID]string{}
	}
	return names
}

func toExpenseResponse(expense models.Expense, names map[uuid.UUID]string) ExpenseResponse {
	response := ExpenseResponse{
		ID:          expense.ID,
		Amount:      expense.Amount,
		Description: expense.Description,
		Date:        expense.Date.Format(dateLayout),
		GroupID:     expense.GroupID,
		PaidBy:      expense.PaidBy,
		CreatedBy:   expense.CreatedBy,
		IsSplit:     expense.IsSplit,
		CreatedAt:   expense.CreatedAt,
		UpdatedAt:   expense.UpdatedAt,
	}

	if expense.CategoryID != nil {
		if name, ok := names[*expense.CategoryID]; ok {
			response.Category = &name
		}
	}

	return response
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

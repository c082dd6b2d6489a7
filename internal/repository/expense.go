package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/splitmyexpenses/backend/internal/models"
)

type ExpenseRepository struct {
	db *pgxpool.Pool
}

// NewExpenseRepository creates the expense repository.
func NewExpenseRepository(db *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// ExpenseFilter narrows expense listings. Zero values mean "no constraint".
type ExpenseFilter struct {
	CategoryName string
	GroupName    string
	StartDate    *time.Time
	EndDate      *time.Time
}

const expenseColumns = `e.id, e.amount, e.description, e.date, e.category_id, e.group_id,
	 e.paid_by, e.created_by, e.is_split, e.created_at, e.updated_at`

// relevanceClause selects expenses relevant to a user: created by them, paid
// by them, or in a group they belong to. The DISTINCT on the caller's query
// deduplicates expenses matching several conditions at once.
const relevanceClause = `(e.created_by = $1 OR e.paid_by = $1 OR EXISTS (
		SELECT 1 FROM group_members m WHERE m.group_id = e.group_id AND m.user_id = $1
	 ))`

func scanExpense(row pgx.Row) (models.Expense, error) {
	var expense models.Expense
	err := row.Scan(&expense.ID, &expense.Amount, &expense.Description, &expense.Date,
		&expense.CategoryID, &expense.GroupID, &expense.PaidBy, &expense.CreatedBy,
		&expense.IsSplit, &expense.CreatedAt, &expense.UpdatedAt)
	return expense, err
}

// Create stores an expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense models.Expense) (models.Expense, error) {
	stored, err := scanExpense(r.db.QueryRow(ctx,
		`INSERT INTO expenses (amount, description, date, category_id, group_id, paid_by, created_by, is_split)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, amount, description, date, category_id, group_id, paid_by, created_by, is_split, created_at, updated_at`,
		expense.Amount, expense.Description, expense.Date, expense.CategoryID,
		expense.GroupID, expense.PaidBy, expense.CreatedBy, expense.IsSplit,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23503":
				return stored, ErrInvalid
			case "23514":
				return stored, ErrInvalid
			}
		}
		return stored, err
	}
	return stored, nil
}

// Get returns one expense, restricted to users it is relevant to.
func (r *ExpenseRepository) Get(ctx context.Context, userID, expenseID uuid.UUID) (models.Expense, error) {
	expense, err := scanExpense(r.db.QueryRow(ctx,
		`SELECT `+expenseColumns+`
		 FROM expenses e
		 WHERE e.id = $2 AND `+relevanceClause,
		userID, expenseID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return expense, ErrNotFound
		}
		return expense, err
	}
	return expense, nil
}

// List returns the user's relevant expenses, newest first, with optional
// category/group/date filters.
func (r *ExpenseRepository) List(ctx context.Context, userID uuid.UUID, filter ExpenseFilter) ([]models.Expense, error) {
	query := `SELECT DISTINCT ` + expenseColumns + `
		 FROM expenses e
		 LEFT JOIN categories c ON c.id = e.category_id
		 LEFT JOIN groups g ON g.id = e.group_id
		 WHERE ` + relevanceClause
	args := []any{userID}

	appendArg := func(clause string, value any) {
		args = append(args, value)
		query += clause
	}

	if filter.CategoryName != "" {
		appendArg(` AND c.name = $`+strconv.Itoa(len(args)+1), filter.CategoryName)
	}
	if filter.GroupName != "" {
		appendArg(` AND g.name = $`+strconv.Itoa(len(args)+1), filter.GroupName)
	}
	if filter.StartDate != nil {
		appendArg(` AND e.date >= $`+strconv.Itoa(len(args)+1), *filter.StartDate)
	}
	if filter.EndDate != nil {
		appendArg(` AND e.date <= $`+strconv.Itoa(len(args)+1), *filter.EndDate)
	}

	query += ` ORDER BY e.date DESC, e.created_at DESC, e.id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

// ListRelevant returns all expenses relevant to the user without filters.
// This is the summary aggregator's input.
func (r *ExpenseRepository) ListRelevant(ctx context.Context, userID uuid.UUID) ([]models.Expense, error) {
	return r.List(ctx, userID, ExpenseFilter{})
}

// Update rewrites the mutable fields of an expense created by the user.
func (r *ExpenseRepository) Update(ctx context.Context, userID uuid.UUID, expense models.Expense) (models.Expense, error) {
	stored, err := scanExpense(r.db.QueryRow(ctx,
		`UPDATE expenses
		 SET amount = $3, description = $4, date = $5, category_id = $6,
		     group_id = $7, paid_by = $8, is_split = $9, updated_at = NOW()
		 WHERE id = $1 AND created_by = $2
		 RETURNING id, amount, description, date, category_id, group_id, paid_by, created_by, is_split, created_at, updated_at`,
		expense.ID, userID, expense.Amount, expense.Description, expense.Date,
		expense.CategoryID, expense.GroupID, expense.PaidBy, expense.IsSplit,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stored, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23503" || pgErr.Code == "23514") {
			return stored, ErrInvalid
		}
		return stored, err
	}
	return stored, nil
}

// Delete removes an expense created by the user. Splits and receipts cascade
// per schema.
func (r *ExpenseRepository) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM expenses WHERE id = $1 AND created_by = $2`,
		expenseID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

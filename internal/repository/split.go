package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/splitmyexpenses/backend/internal/models"
	"example.com/splitmyexpenses/backend/internal/split"
)

type SplitRepository struct {
	db *pgxpool.Pool
}

// NewSplitRepository creates the expense split repository.
func NewSplitRepository(db *pgxpool.Pool) *SplitRepository {
	return &SplitRepository{db: db}
}

// Replace drops any cached splits for the expense and stores the freshly
// computed ones. Splits are a materialization of the engine output, so a
// recompute always wins over whatever was there.
func (r *SplitRepository) Replace(ctx context.Context, expenseID uuid.UUID, shares []split.Share) ([]models.ExpenseSplit, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, expenseID); err != nil {
		return nil, err
	}

	stored := make([]models.ExpenseSplit, 0, len(shares))
	for _, share := range shares {
		var row models.ExpenseSplit
		err := tx.QueryRow(ctx,
			`INSERT INTO expense_splits (expense_id, user_id, share)
			 VALUES ($1, $2, $3)
			 RETURNING id, expense_id, user_id, share, created_at`,
			expenseID, share.UserID, share.Amount,
		).Scan(&row.ID, &row.ExpenseID, &row.UserID, &row.Share, &row.CreatedAt)
		if err != nil {
			return nil, err
		}
		stored = append(stored, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return stored, nil
}

// ListForUser returns splits the user either owes or is collecting: their own
// rows plus rows of expenses they created.
func (r *SplitRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ExpenseSplit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT s.id, s.expense_id, s.user_id, s.share, s.created_at
		 FROM expense_splits s
		 JOIN expenses e ON e.id = s.expense_id
		 WHERE s.user_id = $1 OR e.created_by = $1
		 ORDER BY s.created_at DESC, s.id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	splits := make([]models.ExpenseSplit, 0)
	for rows.Next() {
		var row models.ExpenseSplit
		if err := rows.Scan(&row.ID, &row.ExpenseID, &row.UserID, &row.Share, &row.CreatedAt); err != nil {
			return nil, err
		}
		splits = append(splits, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return splits, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/splitmyexpenses/backend/internal/models"
)

type ReceiptRepository struct {
	db *pgxpool.Pool
}

// NewReceiptRepository creates the receipt repository.
func NewReceiptRepository(db *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create stores receipt metadata for an uploaded file.
func (r *ReceiptRepository) Create(ctx context.Context, receipt models.Receipt) (models.Receipt, error) {
	var stored models.Receipt

	err := r.db.QueryRow(ctx,
		`INSERT INTO receipts (expense_id, file_name, content_type, size, stored_path)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, expense_id, file_name, content_type, size, stored_path, uploaded_at`,
		receipt.ExpenseID, receipt.FileName, receipt.ContentType, receipt.Size, receipt.StoredPath,
	).Scan(&stored.ID, &stored.ExpenseID, &stored.FileName, &stored.ContentType, &stored.Size, &stored.StoredPath, &stored.UploadedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return stored, ErrInvalid
		}
		return stored, err
	}

	return stored, nil
}

// ListByExpense returns receipts attached to one expense.
func (r *ReceiptRepository) ListByExpense(ctx context.Context, expenseID uuid.UUID) ([]models.Receipt, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, expense_id, file_name, content_type, size, stored_path, uploaded_at
		 FROM receipts
		 WHERE expense_id = $1
		 ORDER BY uploaded_at DESC`,
		expenseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := make([]models.Receipt, 0)
	for rows.Next() {
		var receipt models.Receipt
		if err := rows.Scan(&receipt.ID, &receipt.ExpenseID, &receipt.FileName, &receipt.ContentType, &receipt.Size, &receipt.StoredPath, &receipt.UploadedAt); err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return receipts, nil
}

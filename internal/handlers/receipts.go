package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/splitmyexpenses/backend/internal/auth"
	"example.com/splitmyexpenses/backend/internal/models"
	"example.com/splitmyexpenses/backend/internal/repository"
)

// maxReceiptSize caps uploads at 10 MiB.
const maxReceiptSize = 10 << 20

var errReceiptTooLarge = errors.New("file too large")

type ReceiptHandler struct {
	Expenses *repository.ExpenseRepository
	Receipts *repository.ReceiptRepository
	Dir      string
}

// NewReceiptHandler creates the receipt handler storing files under dir.
func NewReceiptHandler(expenses *repository.ExpenseRepository, receipts *repository.ReceiptRepository, dir string) *ReceiptHandler {
	return &ReceiptHandler{Expenses: expenses, Receipts: receipts, Dir: dir}
}

type ReceiptResponse struct {
	ID          uuid.UUID `json:"id"`
	ExpenseID   uuid.UUID `json:"expense_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Upload attaches a multipart file to an expense the user has access to. The
// file lands on disk under a generated name; the original name is kept as
// metadata only.
func (h *ReceiptHandler) Upload(c echo.Context) error {
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	if fileHeader.Size > maxReceiptSize {
		return badRequest(c, "file too large")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return serverError(c)
	}
	defer src.Close()

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return serverError(c)
	}

	storedName := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	storedPath := filepath.Join(h.Dir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		return serverError(c)
	}

	written, err := io.Copy(dst, io.LimitReader(src, maxReceiptSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > maxReceiptSize {
		err = errReceiptTooLarge
	}
	if err != nil {
		_ = os.Remove(storedPath)
		if errors.Is(err, errReceiptTooLarge) {
			return badRequest(c, "file too large")
		}
		return serverError(c)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	receipt, err := h.Receipts.Create(c.Request().Context(), models.Receipt{
		ExpenseID:   expense.ID,
		FileName:    filepath.Base(fileHeader.Filename),
		ContentType: contentType,
		Size:        written,
		StoredPath:  storedPath,
	})
	if err != nil {
		_ = os.Remove(storedPath)
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid expense reference")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, toReceiptResponse(receipt))
}

// List returns the receipts of one expense.
func (h *ReceiptHandler) List(c echo.Context) error {
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

	receipts, err := h.Receipts.ListByExpense(c.Request().Context(), expense.ID)
	if err != nil {
		return serverError(c)
	}

	response := make([]ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		response = append(response, toReceiptResponse(receipt))
	}

	return c.JSON(http.StatusOK, map[string][]ReceiptResponse{"receipts": response})
}

func toReceiptResponse(receipt models.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:          receipt.ID,
		ExpenseID:   receipt.ExpenseID,
		FileName:    receipt.FileName,
		ContentType: receipt.ContentType,
		Size:        receipt.Size,
		UploadedAt:  receipt.UploadedAt,
	}
}

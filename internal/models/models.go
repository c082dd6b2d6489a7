package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          *string   `json:"name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}

// Category is one entry of the fixed expense taxonomy. Identity is the name;
// icon and color are display metadata maintained by the seed upsert.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type Group struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	CreatedBy uuid.UUID   `json:"created_by"`
	Members   []uuid.UUID `json:"members"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Expense is a single spend record. Amount is always non-negative and carried
// as an exact decimal. When GroupID is nil, IsSplit has no effect.
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	GroupID     *uuid.UUID      `json:"group_id,omitempty"`
	PaidBy      uuid.UUID       `json:"paid_by"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	IsSplit     bool            `json:"is_split"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ExpenseSplit records one user's computed obligation for one shared expense.
// Rows are a cache of the split engine output; owed totals are always
// recomputed from current membership instead of read from here.
type ExpenseSplit struct {
	ID        uuid.UUID       `json:"id"`
	ExpenseID uuid.UUID       `json:"expense_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Share     decimal.Decimal `json:"share"`
	CreatedAt time.Time       `json:"created_at"`
}

type Receipt struct {
	ID          uuid.UUID `json:"id"`
	ExpenseID   uuid.UUID `json:"expense_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StoredPath  string    `json:"-"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense rows are append-only; PolicyID is the policy evaluated at submission.
type Expense struct {
	ID              string          `gorm:"primaryKey"`
	OrganizationID  string          `gorm:"column:organization_id;not null;index:idx_expenses_period"`
	CategoryID      string          `gorm:"column:category_id;not null;index:idx_expenses_period"`
	UserID          string          `gorm:"column:user_id;not null;index:idx_expenses_period"`
	PolicyID        string          `gorm:"column:policy_id;not null"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	ExpenseDate     time.Time       `gorm:"column:expense_date;not null;index:idx_expenses_period"`
	Description     string          `gorm:"column:description;not null"`
	Status          string          `gorm:"column:status;not null"`
	RejectionReason *string         `gorm:"column:rejection_reason"`
	ReviewerID      *string         `gorm:"column:reviewer_id"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// ExpenseView is an expense joined with its category name, used for listings.
type ExpenseView struct {
	Expense
	CategoryName string `gorm:"column:category_name"`
}

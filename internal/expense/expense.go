package expense

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	expenseDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/expense"
)

type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

func (s Status) Valid() bool {
	return s == StatusSubmitted || s == StatusApproved || s == StatusRejected
}

// LimitStatuses are the statuses whose expenses consume the period allowance.
var LimitStatuses = []Status{StatusApproved, StatusSubmitted}

func (s Status) CountsTowardLimit() bool {
	for _, counted := range LimitStatuses {
		if s == counted {
			return true
		}
	}
	return false
}

type Expense struct {
	ID              string
	OrganizationID  string
	CategoryID      string
	CategoryName    string
	UserID          string
	PolicyID        string
	Amount          decimal.Decimal
	Date            time.Time
	Description     string
	Status          Status
	RejectionReason *string
	ReviewerID      *string
	CreatedAt       time.Time
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:              e.ID,
		OrganizationID:  e.OrganizationID,
		CategoryID:      e.CategoryID,
		UserID:          e.UserID,
		PolicyID:        e.PolicyID,
		Amount:          e.Amount,
		Date:            e.ExpenseDate,
		Description:     e.Description,
		Status:          Status(e.Status),
		RejectionReason: e.RejectionReason,
		ReviewerID:      e.ReviewerID,
		CreatedAt:       e.CreatedAt,
	}
}

func FromView(v *expenseDatamodel.ExpenseView) *Expense {
	e := FromDataModel(&v.Expense)
	e.CategoryName = v.CategoryName
	return e
}

// SpendKey identifies one period allowance: a user's spending in one
// category of one organization.
type SpendKey struct {
	OrganizationID string
	CategoryID     string
	UserID         string
}

func (k SpendKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.OrganizationID, k.CategoryID, k.UserID)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

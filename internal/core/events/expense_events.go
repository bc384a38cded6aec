package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeExpenseApproved  = "expense.approved"
	EventTypeExpenseSubmitted = "expense.submitted"
	EventTypeExpenseRejected  = "expense.rejected"
)

// ExpenseDecidedEvent records the outcome of one submission. The event type
// follows the decided status.
type ExpenseDecidedEvent struct {
	BaseEvent
	ExpenseID       string          `json:"expense_id"`
	OrganizationID  string          `json:"organization_id"`
	CategoryID      string          `json:"category_id"`
	UserID          string          `json:"user_id"`
	PolicyID        string          `json:"policy_id"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
}

func EventTypeForStatus(status string) string {
	switch status {
	case "APPROVED":
		return EventTypeExpenseApproved
	case "REJECTED":
		return EventTypeExpenseRejected
	default:
		return EventTypeExpenseSubmitted
	}
}

func NewExpenseDecidedEvent(expenseID, organizationID, categoryID, userID, policyID string, amount decimal.Decimal, status, rejectionReason string) *ExpenseDecidedEvent {
	return &ExpenseDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeForStatus(status),
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"expense_id":       expenseID,
				"organization_id":  organizationID,
				"category_id":      categoryID,
				"user_id":          userID,
				"policy_id":        policyID,
				"amount":           amount.StringFixed(2),
				"status":           status,
				"rejection_reason": rejectionReason,
			},
		},
		ExpenseID:       expenseID,
		OrganizationID:  organizationID,
		CategoryID:      categoryID,
		UserID:          userID,
		PolicyID:        policyID,
		Amount:          amount,
		Status:          status,
		RejectionReason: rejectionReason,
	}
}

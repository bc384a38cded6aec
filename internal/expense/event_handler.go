package expense

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/expense-policy/internal/core/events"
)

// AuditHandler writes one audit log line per decided expense.
type AuditHandler struct {
	logger *slog.Logger
}

func NewAuditHandler(logger *slog.Logger) *AuditHandler {
	return &AuditHandler{logger: logger.With("component", "expense_audit")}
}

func (h *AuditHandler) HandleExpenseDecided(ctx context.Context, event events.Event) error {
	decided, ok := event.(*events.ExpenseDecidedEvent)
	if !ok {
		h.logger.Error("invalid event type for expense audit handler", "event_type", event.EventType())
		return fmt.Errorf("expected ExpenseDecidedEvent, got %T", event)
	}

	attrs := []any{
		"event_id", decided.EventID(),
		"event_type", decided.EventType(),
		"expense_id", decided.ExpenseID,
		"organization_id", decided.OrganizationID,
		"category_id", decided.CategoryID,
		"user_id", decided.UserID,
		"policy_id", decided.PolicyID,
		"amount", decided.Amount.StringFixed(2),
		"status", decided.Status,
	}
	if decided.RejectionReason != "" {
		attrs = append(attrs, "rejection_reason", decided.RejectionReason)
	}
	h.logger.InfoContext(ctx, "expense decision recorded", attrs...)
	return nil
}

func (h *AuditHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	types := []string{
		events.EventTypeExpenseApproved,
		events.EventTypeExpenseSubmitted,
		events.EventTypeExpenseRejected,
	}
	for _, t := range types {
		eventBus.Subscribe(t, h.HandleExpenseDecided)
	}

	h.logger.Info("expense audit handlers registered", "handlers", types)
}

package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/expense-policy/internal/core/events"
	"github.com/frahmantamala/expense-policy/internal/expense"
	"github.com/frahmantamala/expense-policy/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect the decision event bus and its audit handler`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [APPROVED|SUBMITTED|REJECTED]",
	Short: "Publish a sample expense decision",
	Long:  `Publish a sample expense decision to the event bus and let the audit handler log it`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd, args[0])
	},
}

var (
	eventAmount string
	eventReason string
)

func publishTestEvent(cmd *cobra.Command, status string) error {
	switch status {
	case string(expense.StatusApproved), string(expense.StatusSubmitted), string(expense.StatusRejected):
	default:
		return fmt.Errorf("unknown status %q", status)
	}
	amount, err := decimal.NewFromString(eventAmount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)
	expense.NewAuditHandler(lg).RegisterEventHandlers(bus)

	reason := ""
	if status == string(expense.StatusRejected) {
		reason = eventReason
	}
	event := events.NewExpenseDecidedEvent(
		uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString(),
		amount, status, reason)

	lg.Info("publishing test event", "event_type", event.EventType(), "event_id", event.EventID())
	if err := bus.PublishSync(cmd.Context(), event); err != nil {
		return err
	}
	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventAmount, "amount", "42.00", "expense amount")
	publishEventCmd.Flags().StringVar(&eventReason, "reason", "Amount $42.00 exceeds policy limit of $40.00", "rejection reason for REJECTED")

	eventCmd.AddCommand(publishEventCmd)
}

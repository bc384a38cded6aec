package expense

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/expense-policy/internal"
	expenseDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-policy/internal/core/events"
	"github.com/frahmantamala/expense-policy/internal/policy"
)

type Submission struct {
	OrganizationID string
	CategoryID     string
	UserID         string
	Amount         decimal.Decimal
	Date           time.Time
	Description    string
}

func (s Submission) key() SpendKey {
	return SpendKey{OrganizationID: s.OrganizationID, CategoryID: s.CategoryID, UserID: s.UserID}
}

type SubmissionResult struct {
	ExpenseID       string
	Status          Status
	AutoApproved    bool
	RejectionReason string
	PolicyID        string
	PolicyScope     policy.Scope
}

type PolicyResolver interface {
	Resolve(ctx context.Context, organizationID, categoryID string, userID *string) (policy.Resolution, error)
}

// SubmissionStore runs the read-then-write of one submission atomically with
// respect to other submissions for the same key.
type SubmissionStore interface {
	WithinSubmission(ctx context.Context, key SpendKey, fn func(tx SubmissionTx) error) error
}

type SubmissionTx interface {
	// SpentInWindow sums APPROVED and SUBMITTED amounts dated inside w.
	SpentInWindow(ctx context.Context, key SpendKey, w policy.Window) (decimal.Decimal, error)
	Create(ctx context.Context, e *expenseDatamodel.Expense) error
}

type Engine struct {
	resolver  PolicyResolver
	store     SubmissionStore
	publisher events.Publisher
	location  *time.Location
	locks     *keyLock
	logger    *slog.Logger
}

// NewEngine wires the submission engine. location is the zone period
// windows are measured in; nil means UTC. publisher may be nil.
func NewEngine(resolver PolicyResolver, store SubmissionStore, publisher events.Publisher, location *time.Location, logger *slog.Logger) *Engine {
	if location == nil {
		location = time.UTC
	}
	return &Engine{
		resolver:  resolver,
		store:     store,
		publisher: publisher,
		location:  location,
		locks:     newKeyLock(),
		logger:    logger,
	}
}

type decision struct {
	status Status
	reason string
}

// Submit decides and records one expense. Exactly one row is written unless
// an error is returned; an over-limit expense is a REJECTED row, not an error.
func (e *Engine) Submit(ctx context.Context, s Submission) (*SubmissionResult, error) {
	userID := s.UserID
	res, err := e.resolver.Resolve(ctx, s.OrganizationID, s.CategoryID, &userID)
	if err != nil {
		return nil, err
	}
	if !res.Found() {
		e.logger.Info("submission refused: no policy",
			"organization_id", s.OrganizationID,
			"category_id", s.CategoryID,
			"user_id", s.UserID)
		return nil, errors.ErrPolicyMissing
	}
	p := res.Policy
	key := s.key()

	unlock := e.locks.Lock(key.String())
	defer unlock()

	var row *expenseDatamodel.Expense
	var d decision
	err = e.store.WithinSubmission(ctx, key, func(tx SubmissionTx) error {
		var err error
		d, err = e.decide(ctx, tx, key, p, s)
		if err != nil {
			return err
		}

		row = &expenseDatamodel.Expense{
			OrganizationID: s.OrganizationID,
			CategoryID:     s.CategoryID,
			UserID:         s.UserID,
			PolicyID:       p.ID,
			Amount:         s.Amount,
			ExpenseDate:    s.Date.UTC(),
			Description:    s.Description,
			Status:         string(d.status),
		}
		if d.reason != "" {
			reason := d.reason
			row.RejectionReason = &reason
		}
		return tx.Create(ctx, row)
	})
	if err != nil {
		e.logger.Error("submission failed", "error", err, "key", key.String())
		return nil, err
	}

	e.logger.Info("expense decided",
		"expense_id", row.ID,
		"policy_id", p.ID,
		"policy_scope", res.Scope,
		"status", d.status,
		"amount", s.Amount.StringFixed(2))

	e.publish(ctx, row)

	return &SubmissionResult{
		ExpenseID:       row.ID,
		Status:          d.status,
		AutoApproved:    d.status == StatusApproved,
		RejectionReason: d.reason,
		PolicyID:        p.ID,
		PolicyScope:     res.Scope,
	}, nil
}

// decide checks the single-expense limit before the period allowance, so an
// oversized expense never touches the period query.
func (e *Engine) decide(ctx context.Context, tx SubmissionTx, key SpendKey, p *policy.Policy, s Submission) (decision, error) {
	if !p.Allows(s.Amount) {
		return decision{
			status: StatusRejected,
			reason: fmt.Sprintf("Amount %s exceeds policy limit of %s", money(s.Amount), money(p.MaxAmount)),
		}, nil
	}

	window := p.Period.WindowFor(s.Date, e.location)
	spent, err := tx.SpentInWindow(ctx, key, window)
	if err != nil {
		return decision{}, err
	}
	if !p.Allows(spent.Add(s.Amount)) {
		return decision{
			status: StatusRejected,
			reason: fmt.Sprintf("Would exceed %s spending limit of %s", p.Period.Label(), money(p.MaxAmount)),
		}, nil
	}

	if p.RequiresReview {
		return decision{status: StatusSubmitted}, nil
	}
	return decision{status: StatusApproved}, nil
}

func (e *Engine) publish(ctx context.Context, row *expenseDatamodel.Expense) {
	if e.publisher == nil {
		return
	}
	reason := ""
	if row.RejectionReason != nil {
		reason = *row.RejectionReason
	}
	event := events.NewExpenseDecidedEvent(row.ID, row.OrganizationID, row.CategoryID, row.UserID, row.PolicyID, row.Amount, row.Status, reason)
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("failed to publish expense decision", "error", err, "expense_id", row.ID)
	}
}

package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/expense-policy/internal"
	categoryDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/expense"
	organizationDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/organization"
	"github.com/frahmantamala/expense-policy/internal/policy"
)

type RepositoryAPI interface {
	ListForUser(ctx context.Context, organizationID, userID string, filter ListFilter) ([]*expenseDatamodel.ExpenseView, error)
	GetByID(ctx context.Context, id string) (*expenseDatamodel.ExpenseView, error)
}

// StatRow is the slice of an expense the statistics are computed from.
type StatRow struct {
	Status    string          `db:"status"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
}

type StatsReader interface {
	StatRows(ctx context.Context, organizationID, userID string) ([]StatRow, error)
}

type Authorizer interface {
	RequireMembership(ctx context.Context, organizationID, userID string) (organizationDatamodel.Role, error)
}

type CategoryLookup interface {
	GetByID(ctx context.Context, id string) (*categoryDatamodel.ExpenseCategory, error)
}

type Submitter interface {
	Submit(ctx context.Context, s Submission) (*SubmissionResult, error)
}

type Service struct {
	engine     Submitter
	repo       RepositoryAPI
	stats      StatsReader
	authz      Authorizer
	categories CategoryLookup
	ceiling    decimal.Decimal
	location   *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

type ServiceConfig struct {
	Ceiling  decimal.Decimal
	Location *time.Location
}

func NewService(engine Submitter, repo RepositoryAPI, stats StatsReader, authz Authorizer, categories CategoryLookup, cfg ServiceConfig, logger *slog.Logger) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		engine:     engine,
		repo:       repo,
		stats:      stats,
		authz:      authz,
		categories: categories,
		ceiling:    cfg.Ceiling,
		location:   loc,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Location() *time.Location {
	return s.location
}

func (s *Service) Submit(ctx context.Context, organizationID, callerID string, dto SubmitExpenseDTO) (*SubmissionResult, error) {
	date, err := dto.Validate(s.ceiling, s.location)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	cat, err := s.categories.GetByID(ctx, dto.CategoryID)
	if err != nil {
		s.logger.Error("failed to get category", "error", err, "category_id", dto.CategoryID)
		return nil, err
	}
	if cat == nil || cat.OrganizationID != organizationID {
		return nil, errors.ErrCategoryNotFound
	}

	return s.engine.Submit(ctx, Submission{
		OrganizationID: organizationID,
		CategoryID:     dto.CategoryID,
		UserID:         callerID,
		Amount:         dto.Amount,
		Date:           date,
		Description:    dto.Description,
	})
}

// List returns the caller's own expenses, newest first.
func (s *Service) List(ctx context.Context, organizationID, callerID string, dto ListExpensesDTO) ([]*Expense, ListFilter, error) {
	filter, err := dto.Filter()
	if err != nil {
		return nil, ListFilter{}, err
	}
	if _, err := s.authz.RequireMembership(ctx, organizationID, callerID); err != nil {
		return nil, ListFilter{}, err
	}

	views, err := s.repo.ListForUser(ctx, organizationID, callerID, filter)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "organization_id", organizationID, "user_id", callerID)
		return nil, ListFilter{}, err
	}

	expenses := make([]*Expense, 0, len(views))
	for _, v := range views {
		expenses = append(expenses, FromView(v))
	}
	return expenses, filter, nil
}

// Get only ever returns the caller's own expense; anything else is not found.
func (s *Service) Get(ctx context.Context, organizationID, expenseID, callerID string) (*Expense, error) {
	if _, err := s.authz.RequireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	view, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		s.logger.Error("failed to get expense", "error", err, "expense_id", expenseID)
		return nil, err
	}
	if view == nil || view.OrganizationID != organizationID || view.UserID != callerID {
		return nil, errors.ErrExpenseNotFound
	}
	return FromView(view), nil
}

type Totals struct {
	Count  int
	Amount decimal.Decimal
}

type PeriodStats struct {
	Total     Totals
	Approved  Totals
	Submitted Totals
	Rejected  Totals
}

func (p *PeriodStats) add(row StatRow) {
	p.Total.Count++
	p.Total.Amount = p.Total.Amount.Add(row.Amount)

	var t *Totals
	switch Status(row.Status) {
	case StatusApproved:
		t = &p.Approved
	case StatusSubmitted:
		t = &p.Submitted
	case StatusRejected:
		t = &p.Rejected
	default:
		return
	}
	t.Count++
	t.Amount = t.Amount.Add(row.Amount)
}

type Stats struct {
	AllTime   PeriodStats
	ThisMonth PeriodStats
}

// Stats summarises the caller's expenses. "This month" is by creation time,
// starting at the first of the current month in the configured zone.
func (s *Service) Stats(ctx context.Context, organizationID, callerID string) (*Stats, error) {
	if _, err := s.authz.RequireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	rows, err := s.stats.StatRows(ctx, organizationID, callerID)
	if err != nil {
		s.logger.Error("failed to load expense stats", "error", err, "organization_id", organizationID, "user_id", callerID)
		return nil, err
	}

	month := policy.PeriodMonthly.WindowFor(s.now(), s.location).Start
	stats := &Stats{}
	for _, row := range rows {
		stats.AllTime.add(row)
		if !row.CreatedAt.Before(month) {
			stats.ThisMonth.add(row)
		}
	}
	return stats, nil
}

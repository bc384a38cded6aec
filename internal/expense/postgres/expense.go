package postgres

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	expenseDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-policy/internal/expense"
	"github.com/frahmantamala/expense-policy/internal/policy"
)

const (
	maxSubmissionAttempts = 3
	sqlStateSerialization = "40001"
)

var countedStatuses = func() []string {
	out := make([]string, len(expense.LimitStatuses))
	for i, s := range expense.LimitStatuses {
		out[i] = string(s)
	}
	return out
}()

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

var (
	_ expense.RepositoryAPI   = (*ExpenseRepository)(nil)
	_ expense.SubmissionStore = (*ExpenseRepository)(nil)
)

func (r *ExpenseRepository) isPostgres() bool {
	return r.db.Dialector.Name() == "postgres"
}

// WithinSubmission runs fn in one transaction. On PostgreSQL the transaction
// is SERIALIZABLE and holds an advisory lock on the spend key, and is retried
// when the database reports a serialization failure.
func (r *ExpenseRepository) WithinSubmission(ctx context.Context, key expense.SpendKey, fn func(tx expense.SubmissionTx) error) error {
	var opts []*sql.TxOptions
	if r.isPostgres() {
		opts = append(opts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	var err error
	for attempt := 1; attempt <= maxSubmissionAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if r.isPostgres() {
				if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key.String()).Error; err != nil {
					return fmt.Errorf("lock spend key: %w", err)
				}
			}
			return fn(&submissionTx{db: tx})
		}, opts...)
		if !isSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("submission not serializable after %d attempts: %w", maxSubmissionAttempts, err)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return stdErrors.As(err, &pgErr) && pgErr.Code == sqlStateSerialization
}

type submissionTx struct {
	db *gorm.DB
}

func (t *submissionTx) SpentInWindow(ctx context.Context, key expense.SpendKey, w policy.Window) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := t.db.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Where("organization_id = ? AND category_id = ? AND user_id = ?", key.OrganizationID, key.CategoryID, key.UserID).
		Where("status IN ?", countedStatuses).
		Where("expense_date >= ? AND expense_date < ?", w.Start.UTC(), w.End.UTC()).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum period spend: %w", err)
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

func (t *submissionTx) Create(ctx context.Context, e *expenseDatamodel.Expense) error {
	if err := t.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

func (r *ExpenseRepository) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("expenses").
		Select("expenses.*, expense_categories.name AS category_name").
		Joins("JOIN expense_categories ON expense_categories.id = expenses.category_id")
}

func (r *ExpenseRepository) ListForUser(ctx context.Context, organizationID, userID string, filter expense.ListFilter) ([]*expenseDatamodel.ExpenseView, error) {
	q := r.views(ctx).
		Where("expenses.organization_id = ? AND expenses.user_id = ?", organizationID, userID)
	if filter.Status != nil {
		q = q.Where("expenses.status = ?", string(*filter.Status))
	}
	if filter.CategoryID != nil {
		q = q.Where("expenses.category_id = ?", *filter.CategoryID)
	}

	var views []*expenseDatamodel.ExpenseView
	err := q.Order("expenses.created_at DESC").
		Order("expenses.id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&views).Error
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return views, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*expenseDatamodel.ExpenseView, error) {
	var v expenseDatamodel.ExpenseView
	if err := r.views(ctx).Where("expenses.id = ?", id).Take(&v).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return &v, nil
}

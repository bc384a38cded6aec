package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/expense-policy/internal/expense"
)

// StatsRepository reads the rows behind the expense statistics with plain SQL.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

var _ expense.StatsReader = (*StatsRepository)(nil)

const statRowsQuery = `
SELECT status, amount, created_at
FROM expenses
WHERE organization_id = ? AND user_id = ?`

func (r *StatsRepository) StatRows(ctx context.Context, organizationID, userID string) ([]expense.StatRow, error) {
	var rows []expense.StatRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(statRowsQuery), organizationID, userID); err != nil {
		return nil, fmt.Errorf("select expense stats: %w", err)
	}
	return rows, nil
}

package postgres

import (
	"context"
	stdErrors "errors"
	"fmt"

	"gorm.io/gorm"

	errors "github.com/frahmantamala/expense-policy/internal"
	policyDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/policy"
	"github.com/frahmantamala/expense-policy/internal/policy"
)

type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) policy.RepositoryAPI {
	return &PolicyRepository{db: db}
}

func (r *PolicyRepository) FindForScope(ctx context.Context, organizationID, categoryID string, userID *string) (*policyDatamodel.Policy, error) {
	q := r.db.WithContext(ctx).
		Where("organization_id = ? AND category_id = ?", organizationID, categoryID)
	if userID == nil {
		q = q.Where("user_id IS NULL")
	} else {
		q = q.Where("user_id = ?", *userID)
	}

	var p policyDatamodel.Policy
	if err := q.Take(&p).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find policy for scope: %w", err)
	}
	return &p, nil
}

func (r *PolicyRepository) Create(ctx context.Context, p *policyDatamodel.Policy) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrPolicyExists
		}
		return fmt.Errorf("create policy: %w", err)
	}
	return nil
}

func (r *PolicyRepository) Update(ctx context.Context, p *policyDatamodel.Policy) error {
	err := r.db.WithContext(ctx).Model(p).
		Select("max_amount", "period", "requires_review", "updated_at").
		Updates(p).Error
	if err != nil {
		return fmt.Errorf("update policy: %w", err)
	}
	return nil
}

func (r *PolicyRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&policyDatamodel.Policy{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	return nil
}

func (r *PolicyRepository) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("policies").
		Select("policies.*, expense_categories.name AS category_name").
		Joins("JOIN expense_categories ON expense_categories.id = policies.category_id")
}

func (r *PolicyRepository) GetByID(ctx context.Context, id string) (*policyDatamodel.PolicyView, error) {
	var v policyDatamodel.PolicyView
	if err := r.views(ctx).Where("policies.id = ?", id).Take(&v).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get policy: %w", err)
	}
	return &v, nil
}

func (r *PolicyRepository) ListForOrganization(ctx context.Context, organizationID string) ([]*policyDatamodel.PolicyView, error) {
	var views []*policyDatamodel.PolicyView
	err := r.views(ctx).
		Where("policies.organization_id = ?", organizationID).
		Order("expense_categories.name ASC").
		Order("policies.user_id IS NOT NULL").
		Order("policies.user_id ASC").
		Find(&views).Error
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return views, nil
}

func (r *PolicyRepository) ListForUser(ctx context.Context, organizationID, userID string) ([]*policyDatamodel.PolicyView, error) {
	var views []*policyDatamodel.PolicyView
	err := r.views(ctx).
		Where("policies.organization_id = ? AND policies.user_id = ?", organizationID, userID).
		Order("expense_categories.name ASC").
		Find(&views).Error
	if err != nil {
		return nil, fmt.Errorf("list user policies: %w", err)
	}
	return views, nil
}

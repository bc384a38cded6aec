package postgres

import (
	"context"
	stdErrors "errors"
	"fmt"

	"gorm.io/gorm"

	errors "github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/category"
	categoryDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/expense"
	policyDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/policy"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

var _ category.RepositoryAPI = (*CategoryRepository)(nil)

func (r *CategoryRepository) ListForOrganization(ctx context.Context, organizationID string) ([]*categoryDatamodel.ExpenseCategory, error) {
	var categories []*categoryDatamodel.ExpenseCategory
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*categoryDatamodel.ExpenseCategory, error) {
	return r.take(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *CategoryRepository) GetByName(ctx context.Context, organizationID, name string) (*categoryDatamodel.ExpenseCategory, error) {
	return r.take(r.db.WithContext(ctx).Where("organization_id = ? AND name = ?", organizationID, name))
}

func (r *CategoryRepository) take(q *gorm.DB) (*categoryDatamodel.ExpenseCategory, error) {
	var cat categoryDatamodel.ExpenseCategory
	if err := q.Take(&cat).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.ExpenseCategory) error {
	if err := r.db.WithContext(ctx).Create(cat).Error; err != nil {
		if stdErrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrCategoryExists
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.ExpenseCategory) error {
	err := r.db.WithContext(ctx).Model(cat).
		Select("name", "description", "updated_at").
		Updates(cat).Error
	if err != nil {
		if stdErrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrCategoryExists
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&categoryDatamodel.ExpenseCategory{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) IsReferenced(ctx context.Context, id string) (bool, error) {
	var policies, expenses int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&policyDatamodel.Policy{}).Where("category_id = ?", id).Count(&policies).Error; err != nil {
		return false, fmt.Errorf("count category policies: %w", err)
	}
	if policies > 0 {
		return true, nil
	}
	if err := db.Model(&expenseDatamodel.Expense{}).Where("category_id = ?", id).Count(&expenses).Error; err != nil {
		return false, fmt.Errorf("count category expenses: %w", err)
	}
	return expenses > 0, nil
}

package category

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/expense-policy/internal"
	categoryDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/category"
	organizationDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/organization"
)

type RepositoryAPI interface {
	ListForOrganization(ctx context.Context, organizationID string) ([]*categoryDatamodel.ExpenseCategory, error)
	GetByID(ctx context.Context, id string) (*categoryDatamodel.ExpenseCategory, error)
	GetByName(ctx context.Context, organizationID, name string) (*categoryDatamodel.ExpenseCategory, error)
	Create(ctx context.Context, category *categoryDatamodel.ExpenseCategory) error
	Update(ctx context.Context, category *categoryDatamodel.ExpenseCategory) error
	Delete(ctx context.Context, id string) error
	// IsReferenced reports whether any policy or expense points at the category.
	IsReferenced(ctx context.Context, id string) (bool, error)
}

type Authorizer interface {
	RequireMembership(ctx context.Context, organizationID, userID string) (organizationDatamodel.Role, error)
	RequireAdmin(ctx context.Context, organizationID, userID string) error
}

type Service struct {
	repo   RepositoryAPI
	authz  Authorizer
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, authz Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		authz:  authz,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, organizationID, callerID string) ([]*Category, error) {
	if _, err := s.authz.RequireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListForOrganization(ctx, organizationID)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err, "organization_id", organizationID)
		return nil, err
	}

	categories := make([]*Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, FromDataModel(row))
	}
	return categories, nil
}

func (s *Service) Get(ctx context.Context, organizationID, categoryID, callerID string) (*Category, error) {
	if _, err := s.authz.RequireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}
	row, err := s.findInOrganization(ctx, organizationID, categoryID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, organizationID, callerID string, dto CategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.authz.RequireAdmin(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	name, description := dto.normalized()
	if err := s.ensureNameFree(ctx, organizationID, name, ""); err != nil {
		return nil, err
	}

	row := &categoryDatamodel.ExpenseCategory{
		OrganizationID: organizationID,
		Name:           name,
		Description:    description,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create category", "error", err, "organization_id", organizationID)
		return nil, err
	}

	s.logger.Info("category created", "category_id", row.ID, "organization_id", organizationID)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, organizationID, categoryID, callerID string, dto CategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.authz.RequireAdmin(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	row, err := s.findInOrganization(ctx, organizationID, categoryID)
	if err != nil {
		return nil, err
	}

	name, description := dto.normalized()
	if err := s.ensureNameFree(ctx, organizationID, name, categoryID); err != nil {
		return nil, err
	}

	row.Name = name
	row.Description = description
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update category", "error", err, "category_id", categoryID)
		return nil, err
	}

	s.logger.Info("category updated", "category_id", categoryID, "organization_id", organizationID)
	return FromDataModel(row), nil
}

// Delete refuses categories that policies or expenses still reference.
func (s *Service) Delete(ctx context.Context, organizationID, categoryID, callerID string) error {
	if err := s.authz.RequireAdmin(ctx, organizationID, callerID); err != nil {
		return err
	}
	if _, err := s.findInOrganization(ctx, organizationID, categoryID); err != nil {
		return err
	}

	inUse, err := s.repo.IsReferenced(ctx, categoryID)
	if err != nil {
		s.logger.Error("failed to check category references", "error", err, "category_id", categoryID)
		return err
	}
	if inUse {
		return errors.ErrCategoryInUse
	}

	if err := s.repo.Delete(ctx, categoryID); err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", categoryID)
		return err
	}

	s.logger.Info("category deleted", "category_id", categoryID, "organization_id", organizationID)
	return nil
}

func (s *Service) findInOrganization(ctx context.Context, organizationID, categoryID string) (*categoryDatamodel.ExpenseCategory, error) {
	row, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		s.logger.Error("failed to get category", "error", err, "category_id", categoryID)
		return nil, err
	}
	if row == nil || row.OrganizationID != organizationID {
		return nil, errors.ErrCategoryNotFound
	}
	return row, nil
}

func (s *Service) ensureNameFree(ctx context.Context, organizationID, name, exceptID string) error {
	existing, err := s.repo.GetByName(ctx, organizationID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != exceptID {
		return errors.ErrCategoryExists
	}
	return nil
}

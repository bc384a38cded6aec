package policy

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/expense-policy/internal"
	categoryDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/category"
	organizationDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/organization"
	policyDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/policy"
)

type RepositoryAPI interface {
	ScopeFinder
	Create(ctx context.Context, p *policyDatamodel.Policy) error
	Update(ctx context.Context, p *policyDatamodel.Policy) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*policyDatamodel.PolicyView, error)
	ListForOrganization(ctx context.Context, organizationID string) ([]*policyDatamodel.PolicyView, error)
	ListForUser(ctx context.Context, organizationID, userID string) ([]*policyDatamodel.PolicyView, error)
}

type Authorizer interface {
	RequireMembership(ctx context.Context, organizationID, userID string) (organizationDatamodel.Role, error)
	RequireAdmin(ctx context.Context, organizationID, userID string) error
	IsMember(ctx context.Context, organizationID, userID string) (bool, error)
}

type CategoryLookup interface {
	GetByID(ctx context.Context, id string) (*categoryDatamodel.ExpenseCategory, error)
}

type Service struct {
	repo       RepositoryAPI
	resolver   *Resolver
	authz      Authorizer
	categories CategoryLookup
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, authz Authorizer, categories CategoryLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		resolver:   NewResolver(repo),
		authz:      authz,
		categories: categories,
		logger:     logger,
	}
}

func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func (s *Service) Create(ctx context.Context, organizationID, callerID string, dto CreatePolicyDTO) (*Policy, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.authz.RequireAdmin(ctx, organizationID, callerID); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, organizationID, dto.CategoryID); err != nil {
		return nil, err
	}
	if dto.UserID != nil {
		if err := s.requireMember(ctx, organizationID, *dto.UserID); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.FindForScope(ctx, organizationID, dto.CategoryID, dto.UserID)
	if err != nil {
		s.logger.Error("failed to check policy scope", "error", err, "organization_id", organizationID)
		return nil, err
	}
	if existing != nil {
		return nil, errors.ErrPolicyExists
	}

	model := &policyDatamodel.Policy{
		OrganizationID: organizationID,
		CategoryID:     dto.CategoryID,
		UserID:         dto.UserID,
		MaxAmount:      dto.MaxAmount,
		Period:         dto.Period,
		RequiresReview: dto.RequiresReview,
	}
	if err := s.repo.Create(ctx, model); err != nil {
		s.logger.Error("failed to create policy", "error", err, "organization_id", organizationID)
		return nil, err
	}

	s.logger.Info("policy created",
		"policy_id", model.ID,
		"organization_id", organizationID,
		"category_id", dto.CategoryID,
		"user_specific", dto.UserID != nil,
		"max_amount", dto.MaxAmount.StringFixed(2),
		"period", dto.Period)

	return s.GetByID(ctx, organizationID, model.ID, callerID)
}

// Update changes the limit fields only. Existing expenses keep the decision
// they were given.
func (s *Service) Update(ctx context.Context, organizationID, policyID, callerID string, dto UpdatePolicyDTO) (*Policy, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.authz.RequireAdmin(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	view, err := s.findInOrganization(ctx, organizationID, policyID)
	if err != nil {
		return nil, err
	}

	model := view.Policy
	model.MaxAmount = dto.MaxAmount
	model.Period = dto.Period
	model.RequiresReview = dto.RequiresReview
	if err := s.repo.Update(ctx, &model); err != nil {
		s.logger.Error("failed to update policy", "error", err, "policy_id", policyID)
		return nil, err
	}

	s.logger.Info("policy updated", "policy_id", policyID, "organization_id", organizationID)
	return s.GetByID(ctx, organizationID, policyID, callerID)
}

func (s *Service) Delete(ctx context.Context, organizationID, policyID, callerID string) error {
	if err := s.authz.RequireAdmin(ctx, organizationID, callerID); err != nil {
		return err
	}
	if _, err := s.findInOrganization(ctx, organizationID, policyID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, policyID); err != nil {
		s.logger.Error("failed to delete policy", "error", err, "policy_id", policyID)
		return err
	}

	s.logger.Info("policy deleted", "policy_id", policyID, "organization_id", organizationID)
	return nil
}

// ListForOrganization orders by category name, organization-wide rows first.
func (s *Service) ListForOrganization(ctx context.Context, organizationID, callerID string) ([]*Policy, error) {
	if _, err := s.authz.RequireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	views, err := s.repo.ListForOrganization(ctx, organizationID)
	if err != nil {
		s.logger.Error("failed to list policies", "error", err, "organization_id", organizationID)
		return nil, err
	}
	return fromViews(views), nil
}

// ListForUser returns only the policies targeted at one member. An empty
// targetUserID means the caller.
func (s *Service) ListForUser(ctx context.Context, organizationID, callerID, targetUserID string) ([]*Policy, error) {
	if _, err := s.authz.RequireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}
	if targetUserID == "" {
		targetUserID = callerID
	}
	if err := s.requireMember(ctx, organizationID, targetUserID); err != nil {
		return nil, err
	}

	views, err := s.repo.ListForUser(ctx, organizationID, targetUserID)
	if err != nil {
		s.logger.Error("failed to list user policies", "error", err, "organization_id", organizationID, "user_id", targetUserID)
		return nil, err
	}
	return fromViews(views), nil
}

// GetEffective reports the policy that would govern a submission by the
// target user in the category.
func (s *Service) GetEffective(ctx context.Context, organizationID, callerID, categoryID, targetUserID string) (Resolution, error) {
	if _, err := s.authz.RequireMembership(ctx, organizationID, callerID); err != nil {
		return Resolution{Scope: ScopeNone}, err
	}
	if targetUserID == "" {
		targetUserID = callerID
	}
	if err := s.requireMember(ctx, organizationID, targetUserID); err != nil {
		return Resolution{Scope: ScopeNone}, err
	}
	if err := s.requireCategory(ctx, organizationID, categoryID); err != nil {
		return Resolution{Scope: ScopeNone}, err
	}

	res, err := s.resolver.Resolve(ctx, organizationID, categoryID, &targetUserID)
	if err != nil {
		s.logger.Error("failed to resolve policy", "error", err, "organization_id", organizationID, "category_id", categoryID)
		return Resolution{Scope: ScopeNone}, err
	}
	return res, nil
}

func (s *Service) GetByID(ctx context.Context, organizationID, policyID, callerID string) (*Policy, error) {
	if _, err := s.authz.RequireMembership(ctx, organizationID, callerID); err != nil {
		return nil, err
	}
	view, err := s.findInOrganization(ctx, organizationID, policyID)
	if err != nil {
		return nil, err
	}
	return FromView(view), nil
}

func (s *Service) findInOrganization(ctx context.Context, organizationID, policyID string) (*policyDatamodel.PolicyView, error) {
	view, err := s.repo.GetByID(ctx, policyID)
	if err != nil {
		s.logger.Error("failed to get policy", "error", err, "policy_id", policyID)
		return nil, err
	}
	if view == nil || view.OrganizationID != organizationID {
		return nil, errors.ErrPolicyNotFound
	}
	return view, nil
}

func (s *Service) requireCategory(ctx context.Context, organizationID, categoryID string) error {
	cat, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		s.logger.Error("failed to get category", "error", err, "category_id", categoryID)
		return err
	}
	if cat == nil || cat.OrganizationID != organizationID {
		return errors.ErrCategoryNotFound
	}
	return nil
}

func (s *Service) requireMember(ctx context.Context, organizationID, userID string) error {
	ok, err := s.authz.IsMember(ctx, organizationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrMemberNotFound
	}
	return nil
}

func fromViews(views []*policyDatamodel.PolicyView) []*Policy {
	policies := make([]*Policy, 0, len(views))
	for _, v := range views {
		policies = append(policies, FromView(v))
	}
	return policies
}

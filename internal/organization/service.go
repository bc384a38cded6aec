package organization

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/expense-policy/internal"
	organizationDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	// CreateWithAdmin stores the organization and the creator's ADMIN
	// membership in one transaction.
	CreateWithAdmin(ctx context.Context, org *organizationDatamodel.Organization) error
	GetByID(ctx context.Context, id string) (*organizationDatamodel.Organization, error)
	Rename(ctx context.Context, id, name string) error
	ListForUser(ctx context.Context, userID string) ([]*organizationDatamodel.OrganizationWithRole, error)
	ListMembers(ctx context.Context, organizationID string) ([]*organizationDatamodel.MemberView, error)
	FindMembership(ctx context.Context, organizationID, userID string) (*organizationDatamodel.Membership, error)
	UpsertMembership(ctx context.Context, m *organizationDatamodel.Membership) error
}

type Authorizer interface {
	RequireMembership(ctx context.Context, organizationID, userID string) (Role, error)
	RequireAdmin(ctx context.Context, organizationID, userID string) error
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
}

type Service struct {
	repo   RepositoryAPI
	authz  Authorizer
	users  UserLookup
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, authz Authorizer, users UserLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		authz:  authz,
		users:  users,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, callerID string, dto OrganizationDTO) (*Organization, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	model := &organizationDatamodel.Organization{
		Name:        strings.TrimSpace(dto.Name),
		CreatedByID: callerID,
	}
	if err := s.repo.CreateWithAdmin(ctx, model); err != nil {
		s.logger.Error("failed to create organization", "error", err, "user_id", callerID)
		return nil, err
	}

	s.logger.Info("organization created", "organization_id", model.ID, "created_by", callerID)
	return s.Get(ctx, model.ID, callerID)
}

// ListMine returns every organization the caller belongs to, newest first.
func (s *Service) ListMine(ctx context.Context, callerID string) ([]*Organization, error) {
	rows, err := s.repo.ListForUser(ctx, callerID)
	if err != nil {
		s.logger.Error("failed to list organizations", "error", err, "user_id", callerID)
		return nil, err
	}

	orgs := make([]*Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, FromDataModel(&row.Organization, row.Role))
	}
	return orgs, nil
}

func (s *Service) Get(ctx context.Context, organizationID, callerID string) (*Organization, error) {
	role, err := s.authz.RequireMembership(ctx, organizationID, callerID)
	if err != nil {
		return nil, err
	}

	model, err := s.repo.GetByID(ctx, organizationID)
	if err != nil {
		s.logger.Error("failed to get organization", "error", err, "organization_id", organizationID)
		return nil, err
	}
	if model == nil {
		return nil, errors.ErrOrganizationNotFound
	}

	members, err := s.repo.ListMembers(ctx, organizationID)
	if err != nil {
		s.logger.Error("failed to list members", "error", err, "organization_id", organizationID)
		return nil, err
	}

	org := FromDataModel(model, role)
	for _, m := range members {
		org.Members = append(org.Members, memberFromView(m))
	}
	return org, nil
}

func (s *Service) Rename(ctx context.Context, organizationID, callerID string, dto OrganizationDTO) (*Organization, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.authz.RequireAdmin(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	if err := s.repo.Rename(ctx, organizationID, strings.TrimSpace(dto.Name)); err != nil {
		s.logger.Error("failed to rename organization", "error", err, "organization_id", organizationID)
		return nil, err
	}

	s.logger.Info("organization renamed", "organization_id", organizationID)
	return s.Get(ctx, organizationID, callerID)
}

// SetMember adds userID to the organization or changes the role of an
// existing member. There is never more than one membership per user.
func (s *Service) SetMember(ctx context.Context, organizationID, callerID, userID string, dto MemberDTO) (*Member, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.authz.RequireAdmin(ctx, organizationID, callerID); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", userID)
		return nil, err
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}

	membership := &organizationDatamodel.Membership{
		OrganizationID: organizationID,
		UserID:         userID,
		Role:           dto.Role,
	}
	if err := s.repo.UpsertMembership(ctx, membership); err != nil {
		s.logger.Error("failed to upsert membership", "error", err, "organization_id", organizationID, "user_id", userID)
		return nil, err
	}

	stored, err := s.repo.FindMembership(ctx, organizationID, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, errors.ErrMemberNotFound
	}

	s.logger.Info("membership set", "organization_id", organizationID, "user_id", userID, "role", stored.Role)
	return &Member{
		UserID:   u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     stored.Role,
		JoinedAt: stored.JoinedAt,
	}, nil
}

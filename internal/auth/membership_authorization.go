package auth

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/expense-policy/internal"
	organizationDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/organization"
)

type MembershipReader interface {
	FindMembership(ctx context.Context, organizationID, userID string) (*organizationDatamodel.Membership, error)
}

// MembershipAuthorization answers organization-scoped access questions from
// the membership table.
type MembershipAuthorization struct {
	memberships MembershipReader
	logger      *slog.Logger
}

func NewMembershipAuthorization(memberships MembershipReader, logger *slog.Logger) *MembershipAuthorization {
	return &MembershipAuthorization{
		memberships: memberships,
		logger:      logger,
	}
}

// RequireMembership returns the caller's role, or Forbidden when the caller
// does not belong to the organization. Unknown organizations are reported
// the same way.
func (a *MembershipAuthorization) RequireMembership(ctx context.Context, organizationID, userID string) (organizationDatamodel.Role, error) {
	if userID == "" {
		return "", errors.NewUnauthorizedError("You must be logged in to access this organization", errors.ErrCodeInvalidToken)
	}

	m, err := a.memberships.FindMembership(ctx, organizationID, userID)
	if err != nil {
		a.logger.ErrorContext(ctx, "membership check failed", "error", err, "organization_id", organizationID, "user_id", userID)
		return "", err
	}
	if m == nil {
		a.logger.WarnContext(ctx, "access denied: not a member", "organization_id", organizationID, "user_id", userID)
		return "", errors.ErrNotMember
	}
	return m.Role, nil
}

func (a *MembershipAuthorization) RequireAdmin(ctx context.Context, organizationID, userID string) error {
	role, err := a.RequireMembership(ctx, organizationID, userID)
	if err != nil {
		return err
	}
	if role != organizationDatamodel.RoleAdmin {
		a.logger.WarnContext(ctx, "access denied: admin role required", "organization_id", organizationID, "user_id", userID)
		return errors.ErrAdminRequired
	}
	return nil
}

// IsMember checks a third party's membership without treating absence as a
// denial of the caller.
func (a *MembershipAuthorization) IsMember(ctx context.Context, organizationID, userID string) (bool, error) {
	m, err := a.memberships.FindMembership(ctx, organizationID, userID)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

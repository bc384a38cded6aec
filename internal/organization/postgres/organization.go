package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	organizationDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/organization"
	"github.com/frahmantamala/expense-policy/internal/organization"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

var _ organization.RepositoryAPI = (*OrganizationRepository)(nil)

func (r *OrganizationRepository) CreateWithAdmin(ctx context.Context, org *organizationDatamodel.Organization) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		admin := &organizationDatamodel.Membership{
			UserID:         org.CreatedByID,
			OrganizationID: org.ID,
			Role:           organizationDatamodel.RoleAdmin,
		}
		if err := tx.Create(admin).Error; err != nil {
			return fmt.Errorf("create admin membership: %w", err)
		}
		return nil
	})
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*organizationDatamodel.Organization, error) {
	var org organizationDatamodel.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}

func (r *OrganizationRepository) Rename(ctx context.Context, id, name string) error {
	err := r.db.WithContext(ctx).
		Model(&organizationDatamodel.Organization{ID: id}).
		Update("name", name).Error
	if err != nil {
		return fmt.Errorf("rename organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) ListForUser(ctx context.Context, userID string) ([]*organizationDatamodel.OrganizationWithRole, error) {
	var rows []*organizationDatamodel.OrganizationWithRole
	err := r.db.WithContext(ctx).
		Table("organizations").
		Select("organizations.*, memberships.role AS role").
		Joins("JOIN memberships ON memberships.organization_id = organizations.id").
		Where("memberships.user_id = ?", userID).
		Order("organizations.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return rows, nil
}

func (r *OrganizationRepository) ListMembers(ctx context.Context, organizationID string) ([]*organizationDatamodel.MemberView, error) {
	var members []*organizationDatamodel.MemberView
	err := r.db.WithContext(ctx).
		Table("memberships").
		Select("memberships.user_id, users.name, users.email, memberships.role, memberships.joined_at").
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.organization_id = ?", organizationID).
		Order("memberships.joined_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (r *OrganizationRepository) FindMembership(ctx context.Context, organizationID, userID string) (*organizationDatamodel.Membership, error) {
	var m organizationDatamodel.Membership
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &m, nil
}

// UpsertMembership inserts the membership or, when the user already belongs
// to the organization, updates only the role.
func (r *OrganizationRepository) UpsertMembership(ctx context.Context, m *organizationDatamodel.Membership) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "organization_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

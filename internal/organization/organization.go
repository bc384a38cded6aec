package organization

import (
	"time"

	organizationDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/organization"
)

type Role = organizationDatamodel.Role

const (
	RoleAdmin  = organizationDatamodel.RoleAdmin
	RoleMember = organizationDatamodel.RoleMember
)

type Organization struct {
	ID          string
	Name        string
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Role is the viewing member's role.
	Role    Role
	Members []Member
}

type Member struct {
	UserID   string
	Name     string
	Email    string
	Role     Role
	JoinedAt time.Time
}

func FromDataModel(o *organizationDatamodel.Organization, role Role) *Organization {
	return &Organization{
		ID:          o.ID,
		Name:        o.Name,
		CreatedByID: o.CreatedByID,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Role:        role,
	}
}

func memberFromView(v *organizationDatamodel.MemberView) Member {
	return Member{
		UserID:   v.UserID,
		Name:     v.Name,
		Email:    v.Email,
		Role:     v.Role,
		JoinedAt: v.JoinedAt,
	}
}

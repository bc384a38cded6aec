package organization

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type Organization struct {
	ID          string    `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	CreatedByID string    `gorm:"column:created_by_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Organization) TableName() string {
	return "organizations"
}

func (o *Organization) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Membership is unique per (user, organization).
type Membership struct {
	ID             string    `gorm:"primaryKey"`
	UserID         string    `gorm:"column:user_id;not null;uniqueIndex:idx_memberships_user_org"`
	OrganizationID string    `gorm:"column:organization_id;not null;uniqueIndex:idx_memberships_user_org"`
	Role           Role      `gorm:"column:role;not null"`
	JoinedAt       time.Time `gorm:"column:joined_at;autoCreateTime"`
}

func (Membership) TableName() string {
	return "memberships"
}

func (m *Membership) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MemberView is a membership joined with the member's user record.
type MemberView struct {
	UserID   string    `gorm:"column:user_id"`
	Name     string    `gorm:"column:name"`
	Email    string    `gorm:"column:email"`
	Role     Role      `gorm:"column:role"`
	JoinedAt time.Time `gorm:"column:joined_at"`
}

// OrganizationWithRole is an organization as seen by one of its members.
type OrganizationWithRole struct {
	Organization
	Role Role `gorm:"column:role"`
}

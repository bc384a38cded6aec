package policy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Policy with a nil UserID applies organization-wide.
type Policy struct {
	ID             string          `gorm:"primaryKey"`
	OrganizationID string          `gorm:"column:organization_id;not null;index:idx_policies_scope"`
	CategoryID     string          `gorm:"column:category_id;not null;index:idx_policies_scope"`
	UserID         *string         `gorm:"column:user_id;index:idx_policies_scope"`
	MaxAmount      decimal.Decimal `gorm:"column:max_amount;type:numeric(12,2);not null"`
	Period         string          `gorm:"column:period;not null"`
	RequiresReview bool            `gorm:"column:requires_review;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Policy) TableName() string {
	return "policies"
}

func (p *Policy) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PolicyView is a policy joined with its category name, used for listings.
type PolicyView struct {
	Policy
	CategoryName string `gorm:"column:category_name"`
}

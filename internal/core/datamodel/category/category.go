package category

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseCategory names are unique within an organization.
type ExpenseCategory struct {
	ID             string    `gorm:"primaryKey"`
	OrganizationID string    `gorm:"column:organization_id;not null;uniqueIndex:idx_categories_org_name"`
	Name           string    `gorm:"column:name;not null;uniqueIndex:idx_categories_org_name"`
	Description    *string   `gorm:"column:description"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ExpenseCategory) TableName() string {
	return "expense_categories"
}

func (c *ExpenseCategory) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

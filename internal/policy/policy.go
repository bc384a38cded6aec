package policy

import (
	"time"

	"github.com/shopspring/decimal"

	policyDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/policy"
)

type Policy struct {
	ID             string
	OrganizationID string
	CategoryID     string
	CategoryName   string
	UserID         *string
	MaxAmount      decimal.Decimal
	Period         Period
	RequiresReview bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p *Policy) IsOrganizationWide() bool {
	return p.UserID == nil
}

// Allows reports whether amount fits under the limit; equality passes.
func (p *Policy) Allows(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(p.MaxAmount)
}

func ToDataModel(p *Policy) *policyDatamodel.Policy {
	return &policyDatamodel.Policy{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		CategoryID:     p.CategoryID,
		UserID:         p.UserID,
		MaxAmount:      p.MaxAmount,
		Period:         string(p.Period),
		RequiresReview: p.RequiresReview,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromDataModel(p *policyDatamodel.Policy) *Policy {
	return &Policy{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		CategoryID:     p.CategoryID,
		UserID:         p.UserID,
		MaxAmount:      p.MaxAmount,
		Period:         Period(p.Period),
		RequiresReview: p.RequiresReview,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromView(v *policyDatamodel.PolicyView) *Policy {
	p := FromDataModel(&v.Policy)
	p.CategoryName = v.CategoryName
	return p
}

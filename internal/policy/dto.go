package policy

import (
	"time"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/core/common/validation"
)

// numeric(12,2)
var maxStorableAmount = decimal.RequireFromString("9999999999.99")

type CreatePolicyDTO struct {
	CategoryID     string          `json:"categoryId"`
	UserID         *string         `json:"userId,omitempty"`
	MaxAmount      decimal.Decimal `json:"maxAmount"`
	Period         string          `json:"period"`
	RequiresReview bool            `json:"requiresReview"`
}

func (d *CreatePolicyDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("categoryId", d.CategoryID).Required()
	if d.UserID != nil {
		v.Field("userId", *d.UserID).Required()
	}
	limitRules(v, d.MaxAmount, d.Period)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdatePolicyDTO struct {
	MaxAmount      decimal.Decimal `json:"maxAmount"`
	Period         string          `json:"period"`
	RequiresReview bool            `json:"requiresReview"`
}

func (d *UpdatePolicyDTO) Validate() error {
	v := validation.NewValidator()
	limitRules(v, d.MaxAmount, d.Period)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func limitRules(v *validation.ValidationBuilder, maxAmount decimal.Decimal, period string) {
	v.Field("maxAmount", maxAmount).Amount(maxStorableAmount)
	v.Field("period", period).
		Required().
		OneOf(errors.ErrCodeInvalidPeriod, string(PeriodDaily), string(PeriodMonthly))
}

type PolicyResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	CategoryID     string    `json:"categoryId"`
	CategoryName   string    `json:"categoryName,omitempty"`
	UserID         *string   `json:"userId"`
	MaxAmount      string    `json:"maxAmount"`
	Period         Period    `json:"period"`
	RequiresReview bool      `json:"requiresReview"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (p *Policy) ToResponse() PolicyResponse {
	return PolicyResponse{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		CategoryID:     p.CategoryID,
		CategoryName:   p.CategoryName,
		UserID:         p.UserID,
		MaxAmount:      p.MaxAmount.StringFixed(2),
		Period:         p.Period,
		RequiresReview: p.RequiresReview,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type PoliciesResponse struct {
	Policies []PolicyResponse `json:"policies"`
}

func toPoliciesResponse(policies []*Policy) PoliciesResponse {
	resp := PoliciesResponse{Policies: make([]PolicyResponse, 0, len(policies))}
	for _, p := range policies {
		resp.Policies = append(resp.Policies, p.ToResponse())
	}
	return resp
}

type EffectivePolicyResponse struct {
	Policy     *PolicyResponse `json:"policy"`
	PolicyType Scope           `json:"policyType"`
}

func (r Resolution) ToResponse() EffectivePolicyResponse {
	resp := EffectivePolicyResponse{PolicyType: r.Scope}
	if r.Found() {
		p := r.Policy.ToResponse()
		resp.Policy = &p
	}
	return resp
}

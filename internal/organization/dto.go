package organization

import (
	"time"

	errors "github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/core/common/validation"
)

type OrganizationDTO struct {
	Name string `json:"name"`
}

func (d *OrganizationDTO) Validate() error {
	if err := validation.ValidateName("name", d.Name, 100); err != nil {
		return err
	}
	return nil
}

type MemberDTO struct {
	Role Role `json:"role"`
}

func (d *MemberDTO) Validate() error {
	if !d.Role.Valid() {
		return errors.NewValidationFieldError("role", "role must be one of ADMIN, MEMBER", errors.ErrCodeValidationFailed)
	}
	return nil
}

type MemberResponse struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type OrganizationResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	CreatedByID string           `json:"createdById"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	UserRole    Role             `json:"userRole"`
	Members     []MemberResponse `json:"members,omitempty"`
}

func (o *Organization) ToResponse() OrganizationResponse {
	resp := OrganizationResponse{
		ID:          o.ID,
		Name:        o.Name,
		CreatedByID: o.CreatedByID,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		UserRole:    o.Role,
	}
	for _, m := range o.Members {
		resp.Members = append(resp.Members, MemberResponse(m))
	}
	return resp
}

type OrganizationsResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
}

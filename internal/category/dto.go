package category

import (
	"strings"
	"time"

	"github.com/frahmantamala/expense-policy/internal/core/common/validation"
)

type CategoryDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (d *CategoryDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	if d.Description != nil {
		v.Field("description", *d.Description).MaxLength(500)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d *CategoryDTO) normalized() (string, *string) {
	name := strings.TrimSpace(d.Name)
	if d.Description == nil {
		return name, nil
	}
	desc := strings.TrimSpace(*d.Description)
	if desc == "" {
		return name, nil
	}
	return name, &desc
}

type CategoryResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

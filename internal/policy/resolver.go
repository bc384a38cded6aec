package policy

import (
	"context"
	"fmt"

	policyDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/policy"
)

type Scope string

const (
	ScopeNone             Scope = "none"
	ScopeUserSpecific     Scope = "user-specific"
	ScopeOrganizationWide Scope = "organization-wide"
)

// Resolution carries the effective policy and where it came from. Policy is
// nil exactly when Scope is ScopeNone.
type Resolution struct {
	Scope  Scope
	Policy *Policy
}

func (r Resolution) Found() bool {
	return r.Scope != ScopeNone && r.Policy != nil
}

// ScopeFinder looks up the policy for one exact scope. A nil userID selects
// the organization-wide row. Returns nil, nil when no row exists.
type ScopeFinder interface {
	FindForScope(ctx context.Context, organizationID, categoryID string, userID *string) (*policyDatamodel.Policy, error)
}

type Resolver struct {
	finder ScopeFinder
}

func NewResolver(finder ScopeFinder) *Resolver {
	return &Resolver{finder: finder}
}

// Resolve picks the user's own policy for the category, falling back to the
// organization-wide one. Fields are never merged across the two.
func (r *Resolver) Resolve(ctx context.Context, organizationID, categoryID string, userID *string) (Resolution, error) {
	if userID != nil && *userID != "" {
		p, err := r.finder.FindForScope(ctx, organizationID, categoryID, userID)
		if err != nil {
			return Resolution{Scope: ScopeNone}, fmt.Errorf("find user policy: %w", err)
		}
		if p != nil {
			return Resolution{Scope: ScopeUserSpecific, Policy: FromDataModel(p)}, nil
		}
	}

	p, err := r.finder.FindForScope(ctx, organizationID, categoryID, nil)
	if err != nil {
		return Resolution{Scope: ScopeNone}, fmt.Errorf("find organization policy: %w", err)
	}
	if p != nil {
		return Resolution{Scope: ScopeOrganizationWide, Policy: FromDataModel(p)}, nil
	}

	return Resolution{Scope: ScopeNone}, nil
}

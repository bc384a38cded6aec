package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	errors "github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/category"
	"github.com/frahmantamala/expense-policy/internal/organization"
	"github.com/frahmantamala/expense-policy/internal/policy"
	"github.com/frahmantamala/expense-policy/internal/user"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed users, an organization with its members, categories and policies for development. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies()
		if err != nil {
			return err
		}
		defer deps.DB.Close()

		return seed(cmd.Context(), deps)
	},
}

type seedPolicy struct {
	category       string
	forMember      bool
	maxAmount      string
	period         policy.Period
	requiresReview bool
}

func seed(ctx context.Context, deps *Dependencies) error {
	s, lg := deps.Services, deps.Logger

	admin, err := s.User.EnsureUser(ctx, user.CreateUserDTO{Email: "padil@mail.com", Name: "Padil Admin", Password: seedPassword})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	member, err := s.User.EnsureUser(ctx, user.CreateUserDTO{Email: "fadhil@mail.com", Name: "Fadhil", Password: seedPassword})
	if err != nil {
		return fmt.Errorf("seed member: %w", err)
	}
	lg.Info("seeded users", "admin", admin.Email, "member", member.Email)

	org, err := ensureOrganization(ctx, s.Organization, admin.ID, "Acme Corp")
	if err != nil {
		return err
	}
	if _, err := s.Organization.SetMember(ctx, org.ID, admin.ID, member.ID, organization.MemberDTO{Role: organization.RoleMember}); err != nil {
		return fmt.Errorf("seed membership: %w", err)
	}
	lg.Info("seeded organization", "organization_id", org.ID, "name", org.Name)

	categories, err := ensureCategories(ctx, s.Category, org.ID, admin.ID, map[string]string{
		"Travel":    "Flights, trains and local transport",
		"Meals":     "Meals and entertainment",
		"Equipment": "Office supplies and equipment",
	})
	if err != nil {
		return err
	}

	policies := []seedPolicy{
		{category: "Travel", maxAmount: "500.00", period: policy.PeriodMonthly},
		{category: "Meals", maxAmount: "50.00", period: policy.PeriodDaily},
		{category: "Meals", forMember: true, maxAmount: "75.00", period: policy.PeriodDaily},
		{category: "Equipment", maxAmount: "1000.00", period: policy.PeriodMonthly, requiresReview: true},
	}
	for _, p := range policies {
		dto := policy.CreatePolicyDTO{
			CategoryID:     categories[p.category],
			MaxAmount:      decimal.RequireFromString(p.maxAmount),
			Period:         string(p.period),
			RequiresReview: p.requiresReview,
		}
		if p.forMember {
			dto.UserID = &member.ID
		}
		_, err := s.Policy.Create(ctx, org.ID, admin.ID, dto)
		if stdErrors.Is(err, errors.ErrPolicyExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed policy for %s: %w", p.category, err)
		}
		lg.Info("seeded policy", "category", p.category, "max_amount", p.maxAmount, "period", p.period)
	}

	lg.Info("seed complete")
	return nil
}

func ensureOrganization(ctx context.Context, svc *organization.Service, adminID, name string) (*organization.Organization, error) {
	mine, err := svc.ListMine(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	for _, org := range mine {
		if org.Name == name {
			return org, nil
		}
	}

	org, err := svc.Create(ctx, adminID, organization.OrganizationDTO{Name: name})
	if err != nil {
		return nil, fmt.Errorf("seed organization: %w", err)
	}
	return org, nil
}

// ensureCategories returns the ids of the named categories, creating the
// missing ones.
func ensureCategories(ctx context.Context, svc *category.Service, orgID, adminID string, wanted map[string]string) (map[string]string, error) {
	existing, err := svc.List(ctx, orgID, adminID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	ids := make(map[string]string, len(wanted))
	for _, c := range existing {
		ids[c.Name] = c.ID
	}

	for name, desc := range wanted {
		if _, ok := ids[name]; ok {
			continue
		}
		created, err := svc.Create(ctx, orgID, adminID, category.CategoryDTO{Name: name, Description: &desc})
		if err != nil {
			return nil, fmt.Errorf("seed category %s: %w", name, err)
		}
		ids[name] = created.ID
	}
	return ids, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "password for the seeded users")
}

// Package testdb opens an in-memory SQLite database carrying every table, for
// repository and handler specs.
package testdb

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	categoryDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/expense"
	organizationDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/organization"
	policyDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/policy"
	userDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/user"
)

// Open returns a fresh database. The pool is pinned to one connection since
// every new SQLite :memory: connection is a separate, empty database.
func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&userDatamodel.User{},
		&organizationDatamodel.Organization{},
		&organizationDatamodel.Membership{},
		&categoryDatamodel.ExpenseCategory{},
		&policyDatamodel.Policy{},
		&expenseDatamodel.Expense{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

// Fixture is a minimal tenant: one organization with an admin and a member.
type Fixture struct {
	Organization *organizationDatamodel.Organization
	Admin        *userDatamodel.User
	Member       *userDatamodel.User
}

func Seed(db *gorm.DB) (*Fixture, error) {
	admin := &userDatamodel.User{Email: "admin@example.com", Name: "Admin", PasswordHash: "x", IsActive: true}
	member := &userDatamodel.User{Email: "member@example.com", Name: "Member", PasswordHash: "x", IsActive: true}
	if err := db.Create(admin).Error; err != nil {
		return nil, err
	}
	if err := db.Create(member).Error; err != nil {
		return nil, err
	}

	org := &organizationDatamodel.Organization{Name: "Acme", CreatedByID: admin.ID}
	if err := db.Create(org).Error; err != nil {
		return nil, err
	}
	memberships := []*organizationDatamodel.Membership{
		{UserID: admin.ID, OrganizationID: org.ID, Role: organizationDatamodel.RoleAdmin},
		{UserID: member.ID, OrganizationID: org.ID, Role: organizationDatamodel.RoleMember},
	}
	for _, m := range memberships {
		if err := db.Create(m).Error; err != nil {
			return nil, err
		}
	}

	return &Fixture{Organization: org, Admin: admin, Member: member}, nil
}

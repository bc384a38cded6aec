package postgres_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	appErrors "github.com/frahmantamala/expense-policy/internal"
	categoryPostgres "github.com/frahmantamala/expense-policy/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-policy/internal/core/datamodel/testdb"
)

func TestCategoryPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Postgres Suite")
}

var _ = Describe("Category PostgreSQL Repository", func() {
	var (
		db      *gorm.DB
		repo    *categoryPostgres.CategoryRepository
		fixture *testdb.Fixture
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		fixture, err = testdb.Seed(db)
		Expect(err).NotTo(HaveOccurred())
		repo = categoryPostgres.NewCategoryRepository(db)
	})

	It("should create and find a category by id and name", func() {
		cat := &categoryDatamodel.ExpenseCategory{OrganizationID: fixture.Organization.ID, Name: "Meals"}
		Expect(repo.Create(ctx, cat)).To(Succeed())
		Expect(cat.ID).NotTo(BeEmpty())

		byID, err := repo.GetByID(ctx, cat.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.Name).To(Equal("Meals"))

		byName, err := repo.GetByName(ctx, fixture.Organization.ID, "Meals")
		Expect(err).NotTo(HaveOccurred())
		Expect(byName.ID).To(Equal(cat.ID))
	})

	It("should return nil for a missing category", func() {
		cat, err := repo.GetByID(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(cat).To(BeNil())
	})

	It("should translate a unique violation into a conflict", func() {
		Expect(repo.Create(ctx, &categoryDatamodel.ExpenseCategory{OrganizationID: fixture.Organization.ID, Name: "Meals"})).To(Succeed())
		err := repo.Create(ctx, &categoryDatamodel.ExpenseCategory{OrganizationID: fixture.Organization.ID, Name: "Meals"})
		Expect(errors.Is(err, appErrors.ErrCategoryExists)).To(BeTrue())
	})

	It("should report categories referenced by expenses", func() {
		cat := &categoryDatamodel.ExpenseCategory{OrganizationID: fixture.Organization.ID, Name: "Meals"}
		Expect(repo.Create(ctx, cat)).To(Succeed())

		inUse, err := repo.IsReferenced(ctx, cat.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(inUse).To(BeFalse())

		Expect(db.Create(&expenseDatamodel.Expense{
			OrganizationID: fixture.Organization.ID,
			CategoryID:     cat.ID,
			UserID:         fixture.Member.ID,
			PolicyID:       "p-1",
			Amount:         decimal.NewFromInt(5),
			Description:    "coffee",
			Status:         "APPROVED",
		}).Error).To(Succeed())

		inUse, err = repo.IsReferenced(ctx, cat.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(inUse).To(BeTrue())
	})

	It("should clear the description on update", func() {
		desc := "old"
		cat := &categoryDatamodel.ExpenseCategory{OrganizationID: fixture.Organization.ID, Name: "Meals", Description: &desc}
		Expect(repo.Create(ctx, cat)).To(Succeed())

		cat.Name = "Food"
		cat.Description = nil
		Expect(repo.Update(ctx, cat)).To(Succeed())

		reloaded, err := repo.GetByID(ctx, cat.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(reloaded.Name).To(Equal("Food"))
		Expect(reloaded.Description).To(BeNil())
	})
})

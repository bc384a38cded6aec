package policy_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	policyDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/policy"
	"github.com/frahmantamala/expense-policy/internal/policy"
)

var _ = Describe("Resolver", func() {
	var (
		repo     *MockRepository
		resolver *policy.Resolver
		ctx      context.Context
		user     string
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = NewMockRepository()
		resolver = policy.NewResolver(repo)
		user = "user-1"
	})

	orgWide := &policyDatamodel.Policy{ID: "p-org", OrganizationID: "org-1", CategoryID: "cat-1", MaxAmount: decimal.NewFromInt(50), Period: "DAILY"}
	userOwn := &policyDatamodel.Policy{ID: "p-user", OrganizationID: "org-1", CategoryID: "cat-1", UserID: strPtr("user-1"), MaxAmount: decimal.NewFromInt(200), Period: "MONTHLY", RequiresReview: true}

	It("should prefer the user's own policy", func() {
		repo.Add(orgWide)
		repo.Add(userOwn)

		res, err := resolver.Resolve(ctx, "org-1", "cat-1", &user)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Scope).To(Equal(policy.ScopeUserSpecific))
		Expect(res.Policy.ID).To(Equal("p-user"))
	})

	It("should never merge fields from the organization-wide policy", func() {
		repo.Add(orgWide)
		repo.Add(userOwn)

		res, err := resolver.Resolve(ctx, "org-1", "cat-1", &user)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Policy.MaxAmount.Equal(decimal.NewFromInt(200))).To(BeTrue())
		Expect(res.Policy.Period).To(Equal(policy.PeriodMonthly))
		Expect(res.Policy.RequiresReview).To(BeTrue())
	})

	It("should fall back to the organization-wide policy", func() {
		repo.Add(orgWide)

		res, err := resolver.Resolve(ctx, "org-1", "cat-1", &user)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Scope).To(Equal(policy.ScopeOrganizationWide))
		Expect(res.Policy.ID).To(Equal("p-org"))
	})

	It("should resolve organization-wide without a user", func() {
		repo.Add(orgWide)
		repo.Add(userOwn)

		res, err := resolver.Resolve(ctx, "org-1", "cat-1", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Policy.ID).To(Equal("p-org"))
	})

	It("should not apply another user's policy", func() {
		repo.Add(userOwn)
		other := "user-2"

		res, err := resolver.Resolve(ctx, "org-1", "cat-1", &other)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Found()).To(BeFalse())
		Expect(res.Scope).To(Equal(policy.ScopeNone))
		Expect(res.Policy).To(BeNil())
	})

	It("should not leak across categories or organizations", func() {
		repo.Add(orgWide)

		res, err := resolver.Resolve(ctx, "org-1", "cat-2", &user)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Found()).To(BeFalse())

		res, err = resolver.Resolve(ctx, "org-2", "cat-1", &user)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Found()).To(BeFalse())
	})

	It("should report storage failures as errors", func() {
		repo.SetShouldFail(true, errors.New("db down"))

		res, err := resolver.Resolve(ctx, "org-1", "cat-1", &user)
		Expect(err).To(MatchError(ContainSubstring("db down")))
		Expect(res.Found()).To(BeFalse())
	})
})

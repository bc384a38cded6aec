package policy_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	appErrors "github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/auth"
	categoryPostgres "github.com/frahmantamala/expense-policy/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/category"
	"github.com/frahmantamala/expense-policy/internal/core/datamodel/testdb"
	organizationPostgres "github.com/frahmantamala/expense-policy/internal/organization/postgres"
	"github.com/frahmantamala/expense-policy/internal/policy"
	policyPostgres "github.com/frahmantamala/expense-policy/internal/policy/postgres"
	"github.com/frahmantamala/expense-policy/internal/transport"
)

var _ = Describe("Policy Handler Integration", func() {
	var (
		db      *gorm.DB
		fixture *testdb.Fixture
		router  *chi.Mux
		travel  *categoryDatamodel.ExpenseCategory
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		fixture, err = testdb.Seed(db)
		Expect(err).NotTo(HaveOccurred())
		travel = &categoryDatamodel.ExpenseCategory{OrganizationID: fixture.Organization.ID, Name: "Travel"}
		Expect(db.Create(travel).Error).To(Succeed())

		authz := auth.NewMembershipAuthorization(organizationPostgres.NewOrganizationRepository(db), slogger)
		service := policy.NewService(policyPostgres.NewPolicyRepository(db), authz, categoryPostgres.NewCategoryRepository(db), slogger)
		handler := policy.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Route("/organizations/{orgID}", func(r chi.Router) {
			r.Get("/policies", handler.ListPolicies)
			r.Post("/policies", handler.CreatePolicy)
			r.Get("/policies/effective", handler.GetEffectivePolicy)
			r.Get("/policies/{policyID}", handler.GetPolicy)
			r.Put("/policies/{policyID}", handler.UpdatePolicy)
			r.Delete("/policies/{policyID}", handler.DeletePolicy)
			r.Get("/members/{userID}/policies", handler.ListMemberPolicies)
		})
	})

	do := func(method, path, userID, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if userID != "" {
			req = req.WithContext(appErrors.ContextWithIdentity(context.Background(), appErrors.Identity{UserID: userID}))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	base := func() string {
		return "/organizations/" + fixture.Organization.ID
	}

	create := func(body string) *httptest.ResponseRecorder {
		return do(http.MethodPost, base()+"/policies", fixture.Admin.ID, body)
	}

	It("should create policies and resolve the effective one per user", func() {
		w := create(`{"categoryId":"` + travel.ID + `","maxAmount":"50","period":"DAILY","requiresReview":false}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var orgWide policy.PolicyResponse
		Expect(json.NewDecoder(w.Body).Decode(&orgWide)).To(Succeed())
		Expect(orgWide.UserID).To(BeNil())
		Expect(orgWide.MaxAmount).To(Equal("50.00"))
		Expect(orgWide.CategoryName).To(Equal("Travel"))

		w = create(`{"categoryId":"` + travel.ID + `","userId":"` + fixture.Member.ID + `","maxAmount":200,"period":"MONTHLY","requiresReview":true}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodGet, base()+"/policies/effective?categoryId="+travel.ID, fixture.Member.ID, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var effective policy.EffectivePolicyResponse
		Expect(json.NewDecoder(w.Body).Decode(&effective)).To(Succeed())
		Expect(effective.PolicyType).To(Equal(policy.ScopeUserSpecific))
		Expect(effective.Policy.MaxAmount).To(Equal("200.00"))

		w = do(http.MethodGet, base()+"/policies/effective?categoryId="+travel.ID, fixture.Admin.ID, "")
		Expect(json.NewDecoder(w.Body).Decode(&effective)).To(Succeed())
		Expect(effective.PolicyType).To(Equal(policy.ScopeOrganizationWide))
		Expect(effective.Policy.ID).To(Equal(orgWide.ID))
	})

	It("should list organization-wide policies before user overrides", func() {
		Expect(create(`{"categoryId":"` + travel.ID + `","userId":"` + fixture.Member.ID + `","maxAmount":200,"period":"DAILY"}`).Code).To(Equal(http.StatusCreated))
		Expect(create(`{"categoryId":"` + travel.ID + `","maxAmount":50,"period":"DAILY"}`).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodGet, base()+"/policies", fixture.Member.ID, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var list policy.PoliciesResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Policies).To(HaveLen(2))
		Expect(list.Policies[0].UserID).To(BeNil())
		Expect(*list.Policies[1].UserID).To(Equal(fixture.Member.ID))

		w = do(http.MethodGet, base()+"/members/"+fixture.Member.ID+"/policies", fixture.Admin.ID, "")
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Policies).To(HaveLen(1))
	})

	It("should answer 409 for a duplicate organization-wide policy", func() {
		body := `{"categoryId":"` + travel.ID + `","maxAmount":50,"period":"DAILY"}`
		Expect(create(body).Code).To(Equal(http.StatusCreated))

		w := create(body)
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("POLICY_EXISTS"))
	})

	It("should answer 403 to members writing policies", func() {
		w := do(http.MethodPost, base()+"/policies", fixture.Member.ID, `{"categoryId":"`+travel.ID+`","maxAmount":50,"period":"DAILY"}`)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should update and delete a policy", func() {
		w := create(`{"categoryId":"` + travel.ID + `","maxAmount":50,"period":"DAILY"}`)
		var created policy.PolicyResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		w = do(http.MethodPut, base()+"/policies/"+created.ID, fixture.Admin.ID, `{"maxAmount":"75.50","period":"MONTHLY","requiresReview":true}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		var updated policy.PolicyResponse
		Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
		Expect(updated.MaxAmount).To(Equal("75.50"))
		Expect(updated.Period).To(Equal(policy.PeriodMonthly))
		Expect(updated.RequiresReview).To(BeTrue())

		Expect(do(http.MethodDelete, base()+"/policies/"+created.ID, fixture.Admin.ID, "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, base()+"/policies/"+created.ID, fixture.Admin.ID, "").Code).To(Equal(http.StatusNotFound))
	})

	It("should answer none for a category without policies", func() {
		w := do(http.MethodGet, base()+"/policies/effective?categoryId="+travel.ID, fixture.Member.ID, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"policy":null`))
		Expect(w.Body.String()).To(ContainSubstring(`"policyType":"none"`))
	})
})

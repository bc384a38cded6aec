package category_test

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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	appErrors "github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/auth"
	"github.com/frahmantamala/expense-policy/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-policy/internal/category/postgres"
	policyDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/policy"
	"github.com/frahmantamala/expense-policy/internal/core/datamodel/testdb"
	organizationPostgres "github.com/frahmantamala/expense-policy/internal/organization/postgres"
	"github.com/frahmantamala/expense-policy/internal/transport"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		fixture *testdb.Fixture
		router  *chi.Mux
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		fixture, err = testdb.Seed(db)
		Expect(err).NotTo(HaveOccurred())

		authz := auth.NewMembershipAuthorization(organizationPostgres.NewOrganizationRepository(db), slogger)
		service := category.NewService(categoryPostgres.NewCategoryRepository(db), authz, slogger)
		handler := category.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Route("/organizations/{orgID}/categories", func(r chi.Router) {
			r.Get("/", handler.GetCategories)
			r.Post("/", handler.CreateCategory)
			r.Get("/{categoryID}", handler.GetCategory)
			r.Put("/{categoryID}", handler.UpdateCategory)
			r.Delete("/{categoryID}", handler.DeleteCategory)
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
		return "/organizations/" + fixture.Organization.ID + "/categories"
	}

	It("should create and list categories in name order", func() {
		w := do(http.MethodPost, base(), fixture.Admin.ID, `{"name":"Travel"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		w = do(http.MethodPost, base(), fixture.Admin.ID, `{"name":"Meals","description":"Team lunches"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodGet, base(), fixture.Member.ID, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		Expect(response.Categories).To(HaveLen(2))
		Expect(response.Categories[0].Name).To(Equal("Meals"))
		Expect(*response.Categories[0].Description).To(Equal("Team lunches"))
		Expect(response.Categories[1].Name).To(Equal("Travel"))
	})

	It("should answer 409 for a duplicate name", func() {
		Expect(do(http.MethodPost, base(), fixture.Admin.ID, `{"name":"Meals"}`).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPost, base(), fixture.Admin.ID, `{"name":"Meals"}`)
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("CATEGORY_EXISTS"))
	})

	It("should answer 403 when a member tries to create", func() {
		w := do(http.MethodPost, base(), fixture.Member.ID, `{"name":"Meals"}`)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should answer 401 without an identity", func() {
		w := do(http.MethodGet, base(), "", "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should answer 409 when deleting a category a policy uses", func() {
		w := do(http.MethodPost, base(), fixture.Admin.ID, `{"name":"Meals"}`)
		var created category.CategoryResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		Expect(db.Create(&policyDatamodel.Policy{
			OrganizationID: fixture.Organization.ID,
			CategoryID:     created.ID,
			MaxAmount:      decimal.NewFromInt(100),
			Period:         "DAILY",
		}).Error).To(Succeed())

		w = do(http.MethodDelete, base()+"/"+created.ID, fixture.Admin.ID, "")
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring("CATEGORY_IN_USE"))
	})

	It("should delete an unused category", func() {
		w := do(http.MethodPost, base(), fixture.Admin.ID, `{"name":"Meals"}`)
		var created category.CategoryResponse
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())

		Expect(do(http.MethodDelete, base()+"/"+created.ID, fixture.Admin.ID, "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, base()+"/"+created.ID, fixture.Admin.ID, "").Code).To(Equal(http.StatusNotFound))
	})
})

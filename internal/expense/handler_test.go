package expense_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	appErrors "github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/auth"
	categoryPostgres "github.com/frahmantamala/expense-policy/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/expense"
	policyDatamodel "github.com/frahmantamala/expense-policy/internal/core/datamodel/policy"
	"github.com/frahmantamala/expense-policy/internal/core/datamodel/testdb"
	"github.com/frahmantamala/expense-policy/internal/core/events"
	"github.com/frahmantamala/expense-policy/internal/expense"
	expensePostgres "github.com/frahmantamala/expense-policy/internal/expense/postgres"
	organizationPostgres "github.com/frahmantamala/expense-policy/internal/organization/postgres"
	"github.com/frahmantamala/expense-policy/internal/policy"
	policyPostgres "github.com/frahmantamala/expense-policy/internal/policy/postgres"
	"github.com/frahmantamala/expense-policy/internal/transport"
)

var _ = Describe("Expense Handler Integration", func() {
	var (
		db       *gorm.DB
		fixture  *testdb.Fixture
		router   *chi.Mux
		bus      *events.EventBus
		travel   *categoryDatamodel.ExpenseCategory
		meals    *categoryDatamodel.ExpenseCategory
		outsider string
	)

	BeforeEach(func() {
		var err error
		slogger := testLogger()

		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		fixture, err = testdb.Seed(db)
		Expect(err).NotTo(HaveOccurred())

		travel = &categoryDatamodel.ExpenseCategory{OrganizationID: fixture.Organization.ID, Name: "Travel"}
		meals = &categoryDatamodel.ExpenseCategory{OrganizationID: fixture.Organization.ID, Name: "Meals"}
		Expect(db.Create(travel).Error).To(Succeed())
		Expect(db.Create(meals).Error).To(Succeed())
		Expect(db.Create(&policyDatamodel.Policy{
			OrganizationID: fixture.Organization.ID,
			CategoryID:     travel.ID,
			MaxAmount:      decimal.NewFromInt(100),
			Period:         string(policy.PeriodDaily),
		}).Error).To(Succeed())
		outsider = "not-a-member"

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		bus = events.NewEventBus(slogger)
		expense.NewAuditHandler(slogger).RegisterEventHandlers(bus)

		authz := auth.NewMembershipAuthorization(organizationPostgres.NewOrganizationRepository(db), slogger)
		policies := policyPostgres.NewPolicyRepository(db)
		expenses := expensePostgres.NewExpenseRepository(db)
		engine := expense.NewEngine(policy.NewResolver(policies), expenses, bus, time.UTC, slogger)
		service := expense.NewService(
			engine,
			expenses,
			expensePostgres.NewStatsRepository(sqlx.NewDb(sqlDB, "sqlite3")),
			authz,
			categoryPostgres.NewCategoryRepository(db),
			expense.ServiceConfig{Ceiling: decimal.RequireFromString("999999.99"), Location: time.UTC},
			slogger,
		)
		handler := expense.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Route("/organizations/{orgID}/expenses", func(r chi.Router) {
			r.Get("/", handler.ListExpenses)
			r.Post("/", handler.SubmitExpense)
			r.Get("/stats", handler.GetStats)
			r.Get("/{expenseID}", handler.GetExpense)
		})
	})

	AfterEach(func() {
		bus.Wait()
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
		return "/organizations/" + fixture.Organization.ID + "/expenses"
	}

	submitBody := func(categoryID, amount, date string) string {
		return `{"amount":` + amount + `,"date":"` + date + `","description":"Taxi","categoryId":"` + categoryID + `"}`
	}

	decode := func(w *httptest.ResponseRecorder, dst interface{}) {
		Expect(json.NewDecoder(w.Body).Decode(dst)).To(Succeed())
	}

	It("should approve, then reject on the daily limit, answering 201 both times", func() {
		w := do(http.MethodPost, base(), fixture.Member.ID, submitBody(travel.ID, "60", "2024-03-15"))
		Expect(w.Code).To(Equal(http.StatusCreated))
		var first expense.SubmissionResponse
		decode(w, &first)
		Expect(first.Status).To(Equal(expense.StatusApproved))
		Expect(first.AutoApproved).To(BeTrue())

		w = do(http.MethodPost, base(), fixture.Member.ID, submitBody(travel.ID, "50", "2024-03-15"))
		Expect(w.Code).To(Equal(http.StatusCreated))
		var second expense.SubmissionResponse
		decode(w, &second)
		Expect(second.Status).To(Equal(expense.StatusRejected))
		Expect(second.RejectionReason).To(Equal("Would exceed daily spending limit of $100.00"))

		w = do(http.MethodPost, base(), fixture.Member.ID, submitBody(travel.ID, "50", "2024-03-16"))
		var third expense.SubmissionResponse
		decode(w, &third)
		Expect(third.Status).To(Equal(expense.StatusApproved))
	})

	It("should omit rejectionReason unless rejected", func() {
		w := do(http.MethodPost, base(), fixture.Member.ID, submitBody(travel.ID, "10", "2024-03-15"))
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Body.String()).NotTo(ContainSubstring("rejectionReason"))
	})

	It("should answer 400 POLICY_MISSING and store nothing for a category without a policy", func() {
		w := do(http.MethodPost, base(), fixture.Member.ID, submitBody(meals.ID, "10", "2024-03-15"))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("POLICY_MISSING"))

		var count int64
		Expect(db.Model(&expenseDatamodel.Expense{}).Count(&count).Error).To(Succeed())
		Expect(count).To(BeZero())
	})

	It("should answer 404 for a category of another organization", func() {
		w := do(http.MethodPost, base(), fixture.Member.ID, submitBody("missing-category", "10", "2024-03-15"))
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("CATEGORY_NOT_FOUND"))
	})

	It("should answer 403 for a non-member", func() {
		w := do(http.MethodPost, base(), outsider, submitBody(travel.ID, "10", "2024-03-15"))
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should validate the amount, date and description", func() {
		w := do(http.MethodPost, base(), fixture.Member.ID,
			`{"amount":1000000,"date":"15/03/2024","description":"","categoryId":"`+travel.ID+`"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		body := w.Body.String()
		Expect(body).To(ContainSubstring("AMOUNT_TOO_HIGH"))
		Expect(body).To(ContainSubstring("INVALID_DATE"))
		Expect(body).To(ContainSubstring(`"field":"description"`))
	})

	It("should reject unknown body fields", func() {
		w := do(http.MethodPost, base(), fixture.Member.ID,
			`{"amount":10,"date":"2024-03-15","description":"x","categoryId":"`+travel.ID+`","userId":"someone-else"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should list and fetch only the caller's expenses", func() {
		Expect(do(http.MethodPost, base(), fixture.Member.ID, submitBody(travel.ID, "10", "2024-03-15")).Code).To(Equal(http.StatusCreated))
		w := do(http.MethodPost, base(), fixture.Admin.ID, submitBody(travel.ID, "20", "2024-03-15"))
		var adminResult expense.SubmissionResponse
		decode(w, &adminResult)

		w = do(http.MethodGet, base(), fixture.Member.ID, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var list expense.ExpensesResponse
		decode(w, &list)
		Expect(list.Expenses).To(HaveLen(1))
		Expect(list.Expenses[0].Amount).To(Equal("10.00"))
		Expect(list.Expenses[0].Date).To(Equal("2024-03-15"))
		Expect(list.Expenses[0].CategoryName).To(Equal("Travel"))
		Expect(list.Limit).To(Equal(50))

		Expect(do(http.MethodGet, base()+"/"+adminResult.ExpenseID, fixture.Member.ID, "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, base()+"/"+adminResult.ExpenseID, fixture.Admin.ID, "").Code).To(Equal(http.StatusOK))
	})

	It("should filter the listing by status", func() {
		do(http.MethodPost, base(), fixture.Member.ID, submitBody(travel.ID, "10", "2024-03-15"))
		do(http.MethodPost, base(), fixture.Member.ID, submitBody(travel.ID, "500", "2024-03-15"))

		w := do(http.MethodGet, base()+"?status=REJECTED", fixture.Member.ID, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var list expense.ExpensesResponse
		decode(w, &list)
		Expect(list.Expenses).To(HaveLen(1))
		Expect(*list.Expenses[0].RejectionReason).To(ContainSubstring("exceeds policy limit"))
	})

	It("should refuse an out-of-range limit", func() {
		Expect(do(http.MethodGet, base()+"?limit=0", fixture.Member.ID, "").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, base()+"?limit=101", fixture.Member.ID, "").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, base()+"?limit=abc", fixture.Member.ID, "").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, base()+"?status=PAID", fixture.Member.ID, "").Code).To(Equal(http.StatusBadRequest))
	})

	It("should report stats per status", func() {
		do(http.MethodPost, base(), fixture.Member.ID, submitBody(travel.ID, "40", "2024-03-15"))
		do(http.MethodPost, base(), fixture.Member.ID, submitBody(travel.ID, "150", "2024-03-15"))
		Expect(db.Create(&expenseDatamodel.Expense{
			OrganizationID: fixture.Organization.ID,
			CategoryID:     travel.ID,
			UserID:         fixture.Member.ID,
			PolicyID:       "old-policy",
			Amount:         decimal.NewFromInt(25),
			ExpenseDate:    time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
			Description:    "old",
			Status:         string(expense.StatusApproved),
			CreatedAt:      time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		}).Error).To(Succeed())

		w := do(http.MethodGet, base()+"/stats", fixture.Member.ID, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var stats expense.StatsResponse
		decode(w, &stats)
		Expect(stats.AllTime.Total.Count).To(Equal(3))
		Expect(stats.AllTime.Approved).To(Equal(expense.StatusTotals{Count: 2, Amount: "65.00"}))
		Expect(stats.AllTime.Rejected).To(Equal(expense.StatusTotals{Count: 1, Amount: "150.00"}))
		Expect(stats.ThisMonth.Total.Count).To(Equal(2))
		Expect(stats.ThisMonth.Approved).To(Equal(expense.StatusTotals{Count: 1, Amount: "40.00"}))
		Expect(stats.ThisMonth.Submitted.Amount).To(Equal("0.00"))
	})
})

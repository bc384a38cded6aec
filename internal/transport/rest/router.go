package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-policy/api"
	"github.com/frahmantamala/expense-policy/internal/auth"
	"github.com/frahmantamala/expense-policy/internal/category"
	"github.com/frahmantamala/expense-policy/internal/expense"
	"github.com/frahmantamala/expense-policy/internal/organization"
	"github.com/frahmantamala/expense-policy/internal/policy"
	"github.com/frahmantamala/expense-policy/internal/transport/middleware"
	"github.com/frahmantamala/expense-policy/internal/transport/swagger"
	"github.com/frahmantamala/expense-policy/internal/user"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
)

// Handlers groups the domain handlers mounted under /api/v1. A nil handler
// leaves its routes unregistered.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Organization *organization.Handler
	Category     *category.Handler
	Policy       *policy.Handler
	Expense      *expense.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, validator *middleware.RequestValidator, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		if _, err := w.Write(api.Spec); err != nil {
			logger.Error("failed to write openapi spec", "error", err)
		}
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if validator != nil {
			r.Use(validator.Middleware)
		}

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			pr.Route("/organizations", func(or chi.Router) {
				if h.Organization != nil {
					or.Post("/", h.Organization.CreateOrganization)
					or.Get("/", h.Organization.ListOrganizations)
				}

				or.Route("/{orgID}", func(org chi.Router) {
					registerOrganizationRoutes(org, h)
				})
			})
		})
	})
}

func registerOrganizationRoutes(r chi.Router, h Handlers) {
	if h.Organization != nil {
		r.Get("/", h.Organization.GetOrganization)
		r.Put("/", h.Organization.RenameOrganization)
		r.Put("/members/{userID}", h.Organization.SetMember)
	}

	if h.Category != nil {
		r.Route("/categories", func(cr chi.Router) {
			cr.Get("/", h.Category.GetCategories)
			cr.Post("/", h.Category.CreateCategory)
			cr.Get("/{categoryID}", h.Category.GetCategory)
			cr.Put("/{categoryID}", h.Category.UpdateCategory)
			cr.Delete("/{categoryID}", h.Category.DeleteCategory)
		})
	}

	if h.Policy != nil {
		r.Get("/members/{userID}/policies", h.Policy.ListMemberPolicies)
		r.Route("/policies", func(pr chi.Router) {
			pr.Get("/", h.Policy.ListPolicies)
			pr.Post("/", h.Policy.CreatePolicy)
			pr.Get("/effective", h.Policy.GetEffectivePolicy)
			pr.Get("/{policyID}", h.Policy.GetPolicy)
			pr.Put("/{policyID}", h.Policy.UpdatePolicy)
			pr.Delete("/{policyID}", h.Policy.DeletePolicy)
		})
	}

	if h.Expense != nil {
		r.Route("/expenses", func(er chi.Router) {
			er.Post("/", h.Expense.SubmitExpense)
			er.Get("/", h.Expense.ListExpenses)
			er.Get("/stats", h.Expense.GetStats)
			er.Get("/{expenseID}", h.Expense.GetExpense)
		})
	}
}

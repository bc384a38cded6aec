package expense

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	errors "github.com/frahmantamala/expense-policy/internal"
	"github.com/frahmantamala/expense-policy/internal/transport"
)

type ServiceAPI interface {
	Submit(ctx context.Context, organizationID, callerID string, dto SubmitExpenseDTO) (*SubmissionResult, error)
	List(ctx context.Context, organizationID, callerID string, dto ListExpensesDTO) ([]*Expense, ListFilter, error)
	Get(ctx context.Context, organizationID, expenseID, callerID string) (*Expense, error)
	Stats(ctx context.Context, organizationID, callerID string) (*Stats, error)
	Location() *time.Location
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// SubmitExpense answers 201 for every recorded decision, REJECTED included.
func (h *Handler) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	var dto SubmitExpenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	result, err := h.Service.Submit(r.Context(), chi.URLParam(r, "orgID"), caller.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.RequestLogger(r).Info("expense submitted",
		"expense_id", result.ExpenseID,
		"status", result.Status,
		"policy_scope", result.PolicyScope)
	h.WriteJSON(w, http.StatusCreated, result.ToResponse())
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	dto := ListExpensesDTO{
		Status:     q.Get("status"),
		CategoryID: q.Get("categoryId"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, appErr := queryInt(raw, "limit")
		if appErr != nil {
			h.WriteError(w, appErr)
			return
		}
		dto.Limit = &limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, appErr := queryInt(raw, "offset")
		if appErr != nil {
			h.WriteError(w, appErr)
			return
		}
		dto.Offset = offset
	}

	expenses, filter, err := h.Service.List(r.Context(), chi.URLParam(r, "orgID"), caller.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	loc := h.Service.Location()
	resp := ExpensesResponse{
		Expenses: make([]ExpenseResponse, 0, len(expenses)),
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	for _, e := range expenses {
		resp.Expenses = append(resp.Expenses, e.ToResponse(loc))
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	e, err := h.Service.Get(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "expenseID"), caller.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e.ToResponse(h.Service.Location()))
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.Stats(r.Context(), chi.URLParam(r, "orgID"), caller.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats.ToResponse())
}

func queryInt(raw, field string) (int, *errors.AppError) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationFieldError(field, field+" must be an integer", errors.ErrCodeValidationFailed)
	}
	return n, nil
}

package policy

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-policy/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, organizationID, callerID string, dto CreatePolicyDTO) (*Policy, error)
	Update(ctx context.Context, organizationID, policyID, callerID string, dto UpdatePolicyDTO) (*Policy, error)
	Delete(ctx context.Context, organizationID, policyID, callerID string) error
	ListForOrganization(ctx context.Context, organizationID, callerID string) ([]*Policy, error)
	ListForUser(ctx context.Context, organizationID, callerID, targetUserID string) ([]*Policy, error)
	GetEffective(ctx context.Context, organizationID, callerID, categoryID, targetUserID string) (Resolution, error)
	GetByID(ctx context.Context, organizationID, policyID, callerID string) (*Policy, error)
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

func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	var dto CreatePolicyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	p, err := h.Service.Create(r.Context(), chi.URLParam(r, "orgID"), caller.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p.ToResponse())
}

func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	var dto UpdatePolicyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	p, err := h.Service.Update(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "policyID"), caller.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "policyID"), caller.UserID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	policies, err := h.Service.ListForOrganization(r.Context(), chi.URLParam(r, "orgID"), caller.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toPoliciesResponse(policies))
}

func (h *Handler) ListMemberPolicies(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	policies, err := h.Service.ListForUser(r.Context(), chi.URLParam(r, "orgID"), caller.UserID, chi.URLParam(r, "userID"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toPoliciesResponse(policies))
}

func (h *Handler) GetEffectivePolicy(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	res, err := h.Service.GetEffective(r.Context(), chi.URLParam(r, "orgID"), caller.UserID, q.Get("categoryId"), q.Get("userId"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res.ToResponse())
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	p, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "policyID"), caller.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

package organization

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-policy/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, callerID string, dto OrganizationDTO) (*Organization, error)
	ListMine(ctx context.Context, callerID string) ([]*Organization, error)
	Get(ctx context.Context, organizationID, callerID string) (*Organization, error)
	Rename(ctx context.Context, organizationID, callerID string, dto OrganizationDTO) (*Organization, error)
	SetMember(ctx context.Context, organizationID, callerID, userID string, dto MemberDTO) (*Member, error)
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

func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	var dto OrganizationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	org, err := h.Service.Create(r.Context(), caller.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, org.ToResponse())
}

func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	orgs, err := h.Service.ListMine(r.Context(), caller.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp := OrganizationsResponse{Organizations: make([]OrganizationResponse, 0, len(orgs))}
	for _, o := range orgs {
		resp.Organizations = append(resp.Organizations, o.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	org, err := h.Service.Get(r.Context(), chi.URLParam(r, "orgID"), caller.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, org.ToResponse())
}

func (h *Handler) RenameOrganization(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	var dto OrganizationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	org, err := h.Service.Rename(r.Context(), chi.URLParam(r, "orgID"), caller.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, org.ToResponse())
}

func (h *Handler) SetMember(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	var dto MemberDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	m, err := h.Service.SetMember(r.Context(), chi.URLParam(r, "orgID"), caller.UserID, chi.URLParam(r, "userID"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MemberResponse(*m))
}

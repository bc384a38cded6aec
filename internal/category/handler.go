package category

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/expense-policy/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, organizationID, callerID string) ([]*Category, error)
	Get(ctx context.Context, organizationID, categoryID, callerID string) (*Category, error)
	Create(ctx context.Context, organizationID, callerID string, dto CategoryDTO) (*Category, error)
	Update(ctx context.Context, organizationID, categoryID, callerID string, dto CategoryDTO) (*Category, error)
	Delete(ctx context.Context, organizationID, categoryID, callerID string) error
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

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	categories, err := h.Service.List(r.Context(), chi.URLParam(r, "orgID"), caller.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp := CategoriesResponse{Categories: make([]CategoryResponse, 0, len(categories))}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, c.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	c, err := h.Service.Get(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "categoryID"), caller.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	var dto CategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	c, err := h.Service.Create(r.Context(), chi.URLParam(r, "orgID"), caller.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c.ToResponse())
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	var dto CategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, err)
		return
	}

	c, err := h.Service.Update(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "categoryID"), caller.UserID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.Identity(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "categoryID"), caller.UserID); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

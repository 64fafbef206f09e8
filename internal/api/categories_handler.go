package api

import (
	"net/http"

	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/model"
	"github.com/go-chi/chi/v5"
)

type categoriesHandler struct {
	*base
}

// CreateCategory handles POST /categories.
func (h *categoriesHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCategoryInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	c, err := h.svc.Categories.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "create", "category", c.ID.String(), "/categories")
	h.entity(w, r, http.StatusCreated, hypermedia.CategoryResource, c)
}

// ListCategories handles GET /categories.
func (h *categoriesHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	collection(h.base, w, r, hypermedia.CategoryResource, "categories", cats, nil, nil)
}

// GetCategory handles GET /categories/{category_id}.
func (h *categoriesHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Categories.Get(r.Context(), chi.URLParam(r, "category_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.entity(w, r, http.StatusOK, hypermedia.CategoryResource, c)
}

// UpdateCategory handles PUT /categories/{category_id}.
func (h *categoriesHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateCategoryInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	c, err := h.svc.Categories.Update(r.Context(), chi.URLParam(r, "category_id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "update", "category", c.ID.String(), "/categories")
	h.entity(w, r, http.StatusOK, hypermedia.CategoryResource, c)
}

// DeleteCategory handles DELETE /categories/{category_id}. Projects in the
// category are kept with category_id cleared.
func (h *categoriesHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Categories.Delete(r.Context(), chi.URLParam(r, "category_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "delete", "category", c.ID.String(), "/categories", "/projects")
	h.deleted(w, r, hypermedia.CategoryResource, c)
}

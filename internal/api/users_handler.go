package api

import (
	"net/http"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/model"
	"github.com/go-chi/chi/v5"
)

// usersHandler groups user account HTTP handlers.
type usersHandler struct {
	*base
}

// CreateUser handles POST /users. Sign-up is public; creating an admin
// requires an admin token.
func (h *usersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	u, err := h.svc.Users.Create(r.Context(), auth.IdentityFromContext(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "create", "user", u.ID.String(), "/users")
	h.entity(w, r, http.StatusCreated, hypermedia.UserResource, u)
}

// ListUsers handles GET /users.
func (h *usersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	collection(h.base, w, r, hypermedia.UserResource, "users", users, nil, nil)
}

// GetUser handles GET /users/{user_id}.
func (h *usersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Users.Get(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.entity(w, r, http.StatusOK, hypermedia.UserResource, u)
}

// UpdateUser handles PUT /users/{user_id}.
func (h *usersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateUserInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	u, err := h.svc.Users.Update(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "user_id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "update", "user", u.ID.String(), "/users")
	h.entity(w, r, http.StatusOK, hypermedia.UserResource, u)
}

// DeleteUser handles DELETE /users/{user_id}. Teams it led lose their lead
// and tasks lose their assignee and audit stamps, so those collections are
// invalidated too.
func (h *usersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Users.Delete(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "delete", "user", u.ID.String(), "/users", "/teams", "/tasks")
	h.deleted(w, r, hypermedia.UserResource, u)
}

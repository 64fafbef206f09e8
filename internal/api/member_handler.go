package api

import (
	"net/http"

	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/model"
	"github.com/go-chi/chi/v5"
)

// membersHandler groups team membership HTTP handlers.
type membersHandler struct {
	*base
}

// AddMember handles POST /teams/{team_id}/members.
func (h *membersHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req model.AddMemberInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	m, err := h.svc.Memberships.Add(r.Context(), chi.URLParam(r, "team_id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "create", "membership", m.ID.String(), "/teams")
	h.entity(w, r, http.StatusCreated, hypermedia.MembershipResource, m)
}

// ListMembers handles GET /teams/{team_id}/members.
func (h *membersHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "team_id")
	members, err := h.svc.Memberships.List(r.Context(), teamID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	collection(h.base, w, r, hypermedia.MembershipResource, "members", members, nil, map[string]string{"team_id": teamID})
}

// GetMember handles GET /teams/{team_id}/members/{user_id}.
func (h *membersHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Memberships.Get(r.Context(), chi.URLParam(r, "team_id"), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.entity(w, r, http.StatusOK, hypermedia.MembershipResource, m)
}

// UpdateMember handles PUT /teams/{team_id}/members/{user_id}.
func (h *membersHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateMemberInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	m, err := h.svc.Memberships.Update(r.Context(), chi.URLParam(r, "team_id"), chi.URLParam(r, "user_id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "update", "membership", m.ID.String(), "/teams")
	h.entity(w, r, http.StatusOK, hypermedia.MembershipResource, m)
}

// RemoveMember handles DELETE /teams/{team_id}/members/{user_id}.
func (h *membersHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Memberships.Remove(r.Context(), chi.URLParam(r, "team_id"), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "delete", "membership", m.ID.String(), "/teams")
	h.deleted(w, r, hypermedia.MembershipResource, m)
}

package api

import (
	"net/http"

	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/model"
	"github.com/go-chi/chi/v5"
)

// teamsHandler groups team HTTP handlers.
type teamsHandler struct {
	*base
}

// detail renders a team with each member decorated as a membership.
func (h *teamsHandler) detail(w http.ResponseWriter, r *http.Request, status int, t *model.TeamDetail) {
	m, err := h.decorated(hypermedia.TeamResource, t)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if members, ok := m["members"].([]any); ok {
		for _, mm := range members {
			h.links.Decorate(hypermedia.MembershipResource, mm)
		}
	}
	writeJSON(w, status, m)
}

// CreateTeam handles POST /teams.
func (h *teamsHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTeamInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	t, err := h.svc.Teams.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "create", "team", t.ID.String(), "/teams")
	h.detail(w, r, http.StatusCreated, t)
}

// ListTeams handles GET /teams.
func (h *teamsHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.svc.Teams.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	collection(h.base, w, r, hypermedia.TeamResource, "teams", teams, nil, nil)
}

// GetTeam handles GET /teams/{team_id}.
func (h *teamsHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Teams.Get(r.Context(), chi.URLParam(r, "team_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.detail(w, r, http.StatusOK, t)
}

// UpdateTeam handles PUT /teams/{team_id}.
func (h *teamsHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTeamInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	t, err := h.svc.Teams.Update(r.Context(), chi.URLParam(r, "team_id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "update", "team", t.ID.String(), "/teams")
	h.detail(w, r, http.StatusOK, t)
}

// DeleteTeam handles DELETE /teams/{team_id}. Its projects and their tasks go
// with it.
func (h *teamsHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Teams.Delete(r.Context(), chi.URLParam(r, "team_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "delete", "team", t.ID.String(), "/teams", "/projects", "/tasks")
	h.deleted(w, r, hypermedia.TeamResource, t)
}

package api

import (
	"net/http"
	"strings"

	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/service"
	"github.com/go-chi/chi/v5"
)

type projectsHandler struct {
	*base
}

// CreateProject handles POST /projects.
func (h *projectsHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProjectInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	p, err := h.svc.Projects.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "create", "project", p.ID.String(), "/projects")
	h.entity(w, r, http.StatusCreated, hypermedia.ProjectResource, p)
}

// ListProjects handles GET /projects?team_id=&category_id=.
func (h *projectsHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := service.ProjectQuery{
		TeamID:     strings.TrimSpace(r.URL.Query().Get("team_id")),
		CategoryID: strings.TrimSpace(r.URL.Query().Get("category_id")),
	}
	projects, err := h.svc.Projects.List(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	filters := map[string]string{"team_id": q.TeamID, "category_id": q.CategoryID}
	collection(h.base, w, r, hypermedia.ProjectResource, "projects", projects, filters, nil)
}

// GetProject handles GET /projects/{project_id}.
func (h *projectsHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Projects.Get(r.Context(), chi.URLParam(r, "project_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.entity(w, r, http.StatusOK, hypermedia.ProjectResource, p)
}

// UpdateProject handles PUT /projects/{project_id}.
func (h *projectsHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProjectInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	p, err := h.svc.Projects.Update(r.Context(), chi.URLParam(r, "project_id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "update", "project", p.ID.String(), "/projects")
	h.entity(w, r, http.StatusOK, hypermedia.ProjectResource, p)
}

// DeleteProject handles DELETE /projects/{project_id}. Its tasks go with it.
func (h *projectsHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Projects.Delete(r.Context(), chi.URLParam(r, "project_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "delete", "project", p.ID.String(), "/projects", "/tasks")
	h.deleted(w, r, hypermedia.ProjectResource, p)
}

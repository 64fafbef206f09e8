package api

import (
	"net/http"
	"strings"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/service"
	"github.com/go-chi/chi/v5"
)

type tasksHandler struct {
	*base
}

// CreateTask handles POST /tasks.
func (h *tasksHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTaskInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	t, err := h.svc.Tasks.Create(r.Context(), auth.IdentityFromContext(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "create", "task", t.ID.String(), "/tasks")
	h.entity(w, r, http.StatusCreated, hypermedia.TaskResource, t)
}

// ListTasks handles GET /tasks?project_id=&assignee_id=&status=.
func (h *tasksHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := service.TaskQuery{
		ProjectID:  strings.TrimSpace(query.Get("project_id")),
		AssigneeID: strings.TrimSpace(query.Get("assignee_id")),
		Status:     strings.TrimSpace(query.Get("status")),
	}
	tasks, err := h.svc.Tasks.List(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	filters := map[string]string{
		"project_id":  q.ProjectID,
		"assignee_id": q.AssigneeID,
		"status":      q.Status,
	}
	collection(h.base, w, r, hypermedia.TaskResource, "tasks", tasks, filters, nil)
}

// GetTask handles GET /tasks/{task_id}.
func (h *tasksHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Tasks.Get(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.entity(w, r, http.StatusOK, hypermedia.TaskResource, t)
}

// UpdateTask handles PUT /tasks/{task_id}.
func (h *tasksHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTaskInput
	if err := readJSON(w, r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	t, err := h.svc.Tasks.Update(r.Context(), auth.IdentityFromContext(r.Context()), chi.URLParam(r, "task_id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "update", "task", t.ID.String(), "/tasks")
	h.entity(w, r, http.StatusOK, hypermedia.TaskResource, t)
}

// DeleteTask handles DELETE /tasks/{task_id}.
func (h *tasksHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Tasks.Delete(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.committed(r, "delete", "task", t.ID.String(), "/tasks")
	h.deleted(w, r, hypermedia.TaskResource, t)
}

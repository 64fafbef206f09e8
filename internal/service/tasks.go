package service

import (
	"context"
	"strings"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/store"
	"github.com/google/uuid"
)

// TaskQuery holds the raw list filters from the query string.
type TaskQuery struct {
	ProjectID  string
	AssigneeID string
	Status     string
}

// Tasks manages tasks and stamps their audit fields.
type Tasks struct {
	s *Service
}

func actorID(actor *auth.Identity) *uuid.UUID {
	if actor == nil {
		return nil
	}
	id := actor.ID
	return &id
}

// Create adds a task created by actor. Status defaults to pending and
// priority to LOW.
func (t *Tasks) Create(ctx context.Context, actor *auth.Identity, in model.CreateTaskInput) (*model.Task, error) {
	title, err := requireText("title", in.Title)
	if err != nil {
		return nil, err
	}
	status := model.StatusPending
	if in.Status != nil {
		status = *in.Status
	}
	if !status.Valid() {
		return nil, invalid("status", "'status' must be one of: pending, in_progress, completed")
	}
	priority := model.PriorityLow
	if in.Priority != nil {
		priority = *in.Priority
	}
	if !priority.Valid() {
		return nil, invalid("priority", "'priority' must be one of 1, 2, 3 or HIGH, MEDIUM, LOW")
	}

	now := t.s.clock()
	task := &model.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		Deadline:    in.Deadline,
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
		CreatedBy:   actorID(actor),
		UpdatedBy:   actorID(actor),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = t.s.tx(ctx, func(tx store.Tx) error {
		if err := firstErr(
			requireProject(ctx, tx, task.ProjectID),
			requireUser(ctx, tx, task.AssigneeID),
		); err != nil {
			return err
		}
		return storeErr(tx.CreateTask(ctx, task), "task")
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Get returns a single task.
func (t *Tasks) Get(ctx context.Context, rawID string) (*model.Task, error) {
	id, err := parseID(rawID, "task")
	if err != nil {
		return nil, err
	}
	var task *model.Task
	err = t.s.tx(ctx, func(tx store.Tx) error {
		var err error
		task, err = tx.GetTask(ctx, id)
		return storeErr(err, "task")
	})
	return task, err
}

// List returns tasks matching q. Filters combine with AND.
func (t *Tasks) List(ctx context.Context, q TaskQuery) ([]*model.Task, error) {
	var (
		f   model.TaskFilter
		err error
	)
	if f.ProjectID, err = parseFilterID(q.ProjectID, "project_id"); err != nil {
		return nil, err
	}
	if f.AssigneeID, err = parseFilterID(q.AssigneeID, "assignee_id"); err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(q.Status); raw != "" {
		st, err := model.ParseStatus(raw)
		if err != nil {
			return nil, invalid("status", "'status' must be one of: pending, in_progress, completed")
		}
		f.Status = &st
	}

	var tasks []*model.Task
	err = t.s.tx(ctx, func(tx store.Tx) error {
		if err := firstErr(
			requireProject(ctx, tx, f.ProjectID),
			requireUser(ctx, tx, f.AssigneeID),
		); err != nil {
			return err
		}
		var err error
		tasks, err = tx.ListTasks(ctx, f)
		return err
	})
	return tasks, err
}

// Update applies a partial update and re-stamps updated_by and updated_at.
func (t *Tasks) Update(ctx context.Context, actor *auth.Identity, rawID string, in model.UpdateTaskInput) (*model.Task, error) {
	id, err := parseID(rawID, "task")
	if err != nil {
		return nil, err
	}
	if err := firstErr(
		requireSet("title", in.Title),
		requireSet("status", in.Status),
		requireSet("priority", in.Priority),
	); err != nil {
		return nil, err
	}

	var task *model.Task
	err = t.s.tx(ctx, func(tx store.Tx) error {
		var err error
		if task, err = tx.GetTask(ctx, id); err != nil {
			return storeErr(err, "task")
		}
		if in.Title.Set {
			if task.Title, err = requireText("title", *in.Title.Value); err != nil {
				return err
			}
		}
		if in.Status.Set {
			if !in.Status.Value.Valid() {
				return invalid("status", "'status' must be one of: pending, in_progress, completed")
			}
			task.Status = *in.Status.Value
		}
		if in.Priority.Set {
			if !in.Priority.Value.Valid() {
				return invalid("priority", "'priority' must be one of 1, 2, 3 or HIGH, MEDIUM, LOW")
			}
			task.Priority = *in.Priority.Value
		}
		task.Description = in.Description.Apply(task.Description)
		task.Deadline = in.Deadline.Apply(task.Deadline)
		task.ProjectID = in.ProjectID.Apply(task.ProjectID)
		task.AssigneeID = in.AssigneeID.Apply(task.AssigneeID)
		task.UpdatedBy = actorID(actor)
		task.UpdatedAt = t.s.clock()

		if err := firstErr(
			requireProject(ctx, tx, task.ProjectID),
			requireUser(ctx, tx, task.AssigneeID),
		); err != nil {
			return err
		}
		return storeErr(tx.UpdateTask(ctx, task), "task")
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task.
func (t *Tasks) Delete(ctx context.Context, rawID string) (*model.Task, error) {
	id, err := parseID(rawID, "task")
	if err != nil {
		return nil, err
	}
	var task *model.Task
	err = t.s.tx(ctx, func(tx store.Tx) error {
		var err error
		if task, err = tx.GetTask(ctx, id); err != nil {
			return storeErr(err, "task")
		}
		return storeErr(tx.DeleteTask(ctx, id), "task")
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

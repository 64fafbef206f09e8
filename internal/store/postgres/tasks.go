package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/google/uuid"
)

const taskColumns = `id, title, description, status, priority, deadline, project_id,
	assignee_id, created_by, updated_by, created_at, updated_at`

func scanTask(scan func(dest ...any) error) (*model.Task, error) {
	t := &model.Task{}
	var status string
	var priority int
	err := scan(&t.ID, &t.Title, &t.Description, &status, &priority, &t.Deadline, &t.ProjectID,
		&t.AssigneeID, &t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = model.Status(status)
	t.Priority = model.Priority(priority)
	return t, nil
}

func (x *tx) CreateTask(ctx context.Context, t *model.Task) error {
	_, err := x.q.Exec(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, deadline, project_id,
		                    assignee_id, created_by, updated_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.Title, t.Description, string(t.Status), int(t.Priority), t.Deadline, t.ProjectID,
		t.AssigneeID, t.CreatedBy, t.UpdatedBy, t.CreatedAt, t.UpdatedAt,
	)
	return mapErr("creating task", err)
}

func (x *tx) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	t, err := scanTask(x.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, mapErr("getting task", err)
	}
	return t, nil
}

// ListTasks returns tasks matching every non-nil filter field.
func (x *tx) ListTasks(ctx context.Context, f model.TaskFilter) ([]*model.Task, error) {
	var where []string
	var args []any
	argIdx := 1

	if f.ProjectID != nil {
		where = append(where, fmt.Sprintf("project_id = $%d", argIdx))
		args = append(args, *f.ProjectID)
		argIdx++
	}
	if f.AssigneeID != nil {
		where = append(where, fmt.Sprintf("assignee_id = $%d", argIdx))
		args = append(args, *f.AssigneeID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*f.Status))
		argIdx++
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := x.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr("listing tasks", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, mapErr("scanning task row", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, mapErr("listing tasks", rows.Err())
}

func (x *tx) UpdateTask(ctx context.Context, t *model.Task) error {
	return x.execOne(ctx, "updating task",
		`UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5, deadline = $6,
		        project_id = $7, assignee_id = $8, updated_by = $9, updated_at = $10
		 WHERE id = $1`,
		t.ID, t.Title, t.Description, string(t.Status), int(t.Priority), t.Deadline,
		t.ProjectID, t.AssigneeID, t.UpdatedBy, t.UpdatedAt,
	)
}

func (x *tx) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return x.execOne(ctx, "deleting task", `DELETE FROM tasks WHERE id = $1`, id)
}

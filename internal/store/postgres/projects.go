package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/google/uuid"
)

const categoryColumns = `id, name, description, color`

func scanCategory(scan func(dest ...any) error) (*model.Category, error) {
	c := &model.Category{}
	if err := scan(&c.ID, &c.Name, &c.Description, &c.Color); err != nil {
		return nil, err
	}
	return c, nil
}

func (x *tx) CreateCategory(ctx context.Context, c *model.Category) error {
	_, err := x.q.Exec(ctx,
		`INSERT INTO categories (id, name, description, color) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Description, c.Color,
	)
	return mapErr("creating category", err)
}

func (x *tx) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := scanCategory(x.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, mapErr("getting category", err)
	}
	return c, nil
}

func (x *tx) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	c, err := scanCategory(x.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name).Scan)
	if err != nil {
		return nil, mapErr("getting category by name", err)
	}
	return c, nil
}

func (x *tx) ListCategories(ctx context.Context) ([]*model.Category, error) {
	rows, err := x.q.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, mapErr("listing categories", err)
	}
	defer rows.Close()

	var cats []*model.Category
	for rows.Next() {
		c, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, mapErr("scanning category row", err)
		}
		cats = append(cats, c)
	}
	return cats, mapErr("listing categories", rows.Err())
}

func (x *tx) UpdateCategory(ctx context.Context, c *model.Category) error {
	return x.execOne(ctx, "updating category",
		`UPDATE categories SET name = $2, description = $3, color = $4 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Color,
	)
}

func (x *tx) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return x.execOne(ctx, "deleting category", `DELETE FROM categories WHERE id = $1`, id)
}

const projectColumns = `id, title, description, status, deadline, team_id, category_id, created_at`

func scanProject(scan func(dest ...any) error) (*model.Project, error) {
	p := &model.Project{}
	if err := scan(&p.ID, &p.Title, &p.Description, &p.Status, &p.Deadline, &p.TeamID, &p.CategoryID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (x *tx) CreateProject(ctx context.Context, p *model.Project) error {
	_, err := x.q.Exec(ctx,
		`INSERT INTO projects (id, title, description, status, deadline, team_id, category_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Title, p.Description, p.Status, p.Deadline, p.TeamID, p.CategoryID, p.CreatedAt,
	)
	return mapErr("creating project", err)
}

func (x *tx) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	p, err := scanProject(x.q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, mapErr("getting project", err)
	}
	return p, nil
}

// ListProjects returns projects matching every non-nil filter field.
func (x *tx) ListProjects(ctx context.Context, f model.ProjectFilter) ([]*model.Project, error) {
	var where []string
	var args []any
	argIdx := 1

	if f.TeamID != nil {
		where = append(where, fmt.Sprintf("team_id = $%d", argIdx))
		args = append(args, *f.TeamID)
		argIdx++
	}
	if f.CategoryID != nil {
		where = append(where, fmt.Sprintf("category_id = $%d", argIdx))
		args = append(args, *f.CategoryID)
		argIdx++
	}

	query := `SELECT ` + projectColumns + ` FROM projects`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := x.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr("listing projects", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, mapErr("scanning project row", err)
		}
		projects = append(projects, p)
	}
	return projects, mapErr("listing projects", rows.Err())
}

func (x *tx) UpdateProject(ctx context.Context, p *model.Project) error {
	return x.execOne(ctx, "updating project",
		`UPDATE projects SET title = $2, description = $3, status = $4, deadline = $5, team_id = $6, category_id = $7
		 WHERE id = $1`,
		p.ID, p.Title, p.Description, p.Status, p.Deadline, p.TeamID, p.CategoryID,
	)
}

func (x *tx) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return x.execOne(ctx, "deleting project", `DELETE FROM projects WHERE id = $1`, id)
}

package service

import (
	"context"
	"strings"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/store"
	"github.com/google/uuid"
)

// ProjectQuery holds the raw list filters from the query string.
type ProjectQuery struct {
	TeamID     string
	CategoryID string
}

// Projects manages projects.
type Projects struct {
	s *Service
}

// Create adds a project. The status defaults to planning.
func (p *Projects) Create(ctx context.Context, in model.CreateProjectInput) (*model.Project, error) {
	title, err := requireText("title", in.Title)
	if err != nil {
		return nil, err
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = model.DefaultProjectStatus
	}
	project := &model.Project{
		ID:          uuid.New(),
		Title:       title,
		Description: in.Description,
		Status:      status,
		Deadline:    in.Deadline,
		TeamID:      in.TeamID,
		CategoryID:  in.CategoryID,
		CreatedAt:   p.s.clock(),
	}
	err = p.s.tx(ctx, func(tx store.Tx) error {
		if err := firstErr(
			requireTeam(ctx, tx, project.TeamID),
			requireCategory(ctx, tx, project.CategoryID),
		); err != nil {
			return err
		}
		return storeErr(tx.CreateProject(ctx, project), "project")
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Get returns a single project.
func (p *Projects) Get(ctx context.Context, rawID string) (*model.Project, error) {
	id, err := parseID(rawID, "project")
	if err != nil {
		return nil, err
	}
	var project *model.Project
	err = p.s.tx(ctx, func(tx store.Tx) error {
		var err error
		project, err = tx.GetProject(ctx, id)
		return storeErr(err, "project")
	})
	return project, err
}

// List returns projects matching q. A malformed filter is a validation error
// and a filter naming a missing team or category is not found.
func (p *Projects) List(ctx context.Context, q ProjectQuery) ([]*model.Project, error) {
	var (
		f   model.ProjectFilter
		err error
	)
	if f.TeamID, err = parseFilterID(q.TeamID, "team_id"); err != nil {
		return nil, err
	}
	if f.CategoryID, err = parseFilterID(q.CategoryID, "category_id"); err != nil {
		return nil, err
	}

	var projects []*model.Project
	err = p.s.tx(ctx, func(tx store.Tx) error {
		if err := firstErr(
			requireTeam(ctx, tx, f.TeamID),
			requireCategory(ctx, tx, f.CategoryID),
		); err != nil {
			return err
		}
		var err error
		projects, err = tx.ListProjects(ctx, f)
		return err
	})
	return projects, err
}

// Update applies a partial update.
func (p *Projects) Update(ctx context.Context, rawID string, in model.UpdateProjectInput) (*model.Project, error) {
	id, err := parseID(rawID, "project")
	if err != nil {
		return nil, err
	}
	if err := firstErr(requireSet("title", in.Title), requireSet("status", in.Status)); err != nil {
		return nil, err
	}

	var project *model.Project
	err = p.s.tx(ctx, func(tx store.Tx) error {
		var err error
		if project, err = tx.GetProject(ctx, id); err != nil {
			return storeErr(err, "project")
		}
		if in.Title.Set {
			if project.Title, err = requireText("title", *in.Title.Value); err != nil {
				return err
			}
		}
		if in.Status.Set {
			if project.Status, err = requireText("status", *in.Status.Value); err != nil {
				return err
			}
		}
		project.Description = in.Description.Apply(project.Description)
		project.Deadline = in.Deadline.Apply(project.Deadline)
		project.TeamID = in.TeamID.Apply(project.TeamID)
		project.CategoryID = in.CategoryID.Apply(project.CategoryID)

		if err := firstErr(
			requireTeam(ctx, tx, project.TeamID),
			requireCategory(ctx, tx, project.CategoryID),
		); err != nil {
			return err
		}
		return storeErr(tx.UpdateProject(ctx, project), "project")
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project and its tasks.
func (p *Projects) Delete(ctx context.Context, rawID string) (*model.Project, error) {
	id, err := parseID(rawID, "project")
	if err != nil {
		return nil, err
	}
	var project *model.Project
	err = p.s.tx(ctx, func(tx store.Tx) error {
		var err error
		if project, err = tx.GetProject(ctx, id); err != nil {
			return storeErr(err, "project")
		}
		return storeErr(tx.DeleteProject(ctx, id), "project")
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

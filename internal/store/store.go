// Package store defines the persistence contract consumed by the service
// layer. Implementations live in the postgres and memory subpackages.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Constraint kinds reported by ConstraintError.
const (
	ConstraintUnique     = "unique"
	ConstraintForeignKey = "foreign_key"
)

// ConstraintError reports a rejected write caused by a uniqueness or
// referential-integrity rule.
type ConstraintError struct {
	Kind       string
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint %q violated", e.Kind, e.Constraint)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Store opens transactions. Every service operation runs inside exactly one.
type Store interface {
	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the CRUD contract available inside a transaction.
type Tx interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	CreateTeam(ctx context.Context, t *model.Team) error
	GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error)
	ListTeams(ctx context.Context) ([]*model.Team, error)
	UpdateTeam(ctx context.Context, t *model.Team) error
	DeleteTeam(ctx context.Context, id uuid.UUID) error

	CreateMembership(ctx context.Context, m *model.TeamMembership) error
	GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*model.TeamMembership, error)
	ListMemberships(ctx context.Context, teamID uuid.UUID) ([]*model.TeamMembership, error)
	UpdateMembership(ctx context.Context, m *model.TeamMembership) error
	DeleteMembership(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, c *model.Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProject(ctx context.Context, p *model.Project) error
	GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListProjects(ctx context.Context, f model.ProjectFilter) ([]*model.Project, error)
	UpdateProject(ctx context.Context, p *model.Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error

	CreateTask(ctx context.Context, t *model.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListTasks(ctx context.Context, f model.TaskFilter) ([]*model.Task, error)
	UpdateTask(ctx context.Context, t *model.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

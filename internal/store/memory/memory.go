// Package memory is an in-process store.Store. Transactions are serialized
// and run against a copy of the tables that replaces the live copy on commit,
// so a failed transaction leaves no partial writes behind.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/store"
	"github.com/google/uuid"
)

type tables struct {
	users       map[uuid.UUID]model.User
	teams       map[uuid.UUID]model.Team
	memberships map[uuid.UUID]model.TeamMembership
	categories  map[uuid.UUID]model.Category
	projects    map[uuid.UUID]model.Project
	tasks       map[uuid.UUID]model.Task

	// seq records insertion order so listings are stable.
	seq     map[uuid.UUID]uint64
	nextSeq uint64
}

func newTables() *tables {
	return &tables{
		users:       map[uuid.UUID]model.User{},
		teams:       map[uuid.UUID]model.Team{},
		memberships: map[uuid.UUID]model.TeamMembership{},
		categories:  map[uuid.UUID]model.Category{},
		projects:    map[uuid.UUID]model.Project{},
		tasks:       map[uuid.UUID]model.Task{},
		seq:         map[uuid.UUID]uint64{},
	}
}

func (t *tables) clone() *tables {
	return &tables{
		users:       maps.Clone(t.users),
		teams:       maps.Clone(t.teams),
		memberships: maps.Clone(t.memberships),
		categories:  maps.Clone(t.categories),
		projects:    maps.Clone(t.projects),
		tasks:       maps.Clone(t.tasks),
		seq:         maps.Clone(t.seq),
		nextSeq:     t.nextSeq,
	}
}

// Store is a store.Store held entirely in memory.
type Store struct {
	mu   sync.Mutex
	data *tables
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: newTables()}
}

// WithTx implements store.Store.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.data.clone()
	if err := fn(&tx{t: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// tx implements store.Tx over a working copy of the tables.
type tx struct {
	t *tables
}

func (x *tx) stamp(id uuid.UUID) {
	x.t.nextSeq++
	x.t.seq[id] = x.t.nextSeq
}

func sortBySeq[T any](t *tables, items []*T, id func(*T) uuid.UUID) {
	sort.Slice(items, func(i, j int) bool {
		return t.seq[id(items[i])] < t.seq[id(items[j])]
	})
}

func unique(constraint string) error {
	return &store.ConstraintError{Kind: store.ConstraintUnique, Constraint: constraint}
}

func foreignKey(constraint string) error {
	return &store.ConstraintError{Kind: store.ConstraintForeignKey, Constraint: constraint}
}

func (x *tx) userExists(id *uuid.UUID) bool {
	if id == nil {
		return true
	}
	_, ok := x.t.users[*id]
	return ok
}

// --- users ---

func (x *tx) checkUserUnique(u *model.User) error {
	for id, other := range x.t.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			return unique("users_username_key")
		}
		if other.Email == u.Email {
			return unique("users_email_key")
		}
	}
	return nil
}

func (x *tx) CreateUser(ctx context.Context, u *model.User) error {
	if _, ok := x.t.users[u.ID]; ok {
		return unique("users_pkey")
	}
	if err := x.checkUserUnique(u); err != nil {
		return err
	}
	x.t.users[u.ID] = *u
	x.stamp(u.ID)
	return nil
}

func (x *tx) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := x.t.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (x *tx) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range x.t.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (x *tx) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range x.t.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (x *tx) ListUsers(ctx context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(x.t.users))
	for _, u := range x.t.users {
		out = append(out, &u)
	}
	sortBySeq(x.t, out, func(u *model.User) uuid.UUID { return u.ID })
	return out, nil
}

func (x *tx) UpdateUser(ctx context.Context, u *model.User) error {
	if _, ok := x.t.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	if err := x.checkUserUnique(u); err != nil {
		return err
	}
	x.t.users[u.ID] = *u
	return nil
}

// DeleteUser nulls references from teams and tasks and removes the user's
// memberships.
func (x *tx) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, ok := x.t.users[id]; !ok {
		return store.ErrNotFound
	}
	for tid, team := range x.t.teams {
		if team.LeadID != nil && *team.LeadID == id {
			team.LeadID = nil
			x.t.teams[tid] = team
		}
	}
	for tid, task := range x.t.tasks {
		changed := false
		if task.AssigneeID != nil && *task.AssigneeID == id {
			task.AssigneeID, changed = nil, true
		}
		if task.CreatedBy != nil && *task.CreatedBy == id {
			task.CreatedBy, changed = nil, true
		}
		if task.UpdatedBy != nil && *task.UpdatedBy == id {
			task.UpdatedBy, changed = nil, true
		}
		if changed {
			x.t.tasks[tid] = task
		}
	}
	for mid, m := range x.t.memberships {
		if m.UserID == id {
			delete(x.t.memberships, mid)
		}
	}
	delete(x.t.users, id)
	return nil
}

// --- teams ---

func (x *tx) CreateTeam(ctx context.Context, t *model.Team) error {
	if !x.userExists(t.LeadID) {
		return foreignKey("teams_lead_id_fkey")
	}
	x.t.teams[t.ID] = *t
	x.stamp(t.ID)
	return nil
}

func (x *tx) GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	t, ok := x.t.teams[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (x *tx) ListTeams(ctx context.Context) ([]*model.Team, error) {
	out := make([]*model.Team, 0, len(x.t.teams))
	for _, t := range x.t.teams {
		out = append(out, &t)
	}
	sortBySeq(x.t, out, func(t *model.Team) uuid.UUID { return t.ID })
	return out, nil
}

func (x *tx) UpdateTeam(ctx context.Context, t *model.Team) error {
	if _, ok := x.t.teams[t.ID]; !ok {
		return store.ErrNotFound
	}
	if !x.userExists(t.LeadID) {
		return foreignKey("teams_lead_id_fkey")
	}
	x.t.teams[t.ID] = *t
	return nil
}

func (x *tx) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	if _, ok := x.t.teams[id]; !ok {
		return store.ErrNotFound
	}
	for mid, m := range x.t.memberships {
		if m.TeamID == id {
			delete(x.t.memberships, mid)
		}
	}
	for pid, p := range x.t.projects {
		if p.TeamID != nil && *p.TeamID == id {
			x.deleteProject(pid)
		}
	}
	delete(x.t.teams, id)
	return nil
}

// --- memberships ---

func (x *tx) CreateMembership(ctx context.Context, m *model.TeamMembership) error {
	if _, ok := x.t.teams[m.TeamID]; !ok {
		return foreignKey("team_memberships_team_id_fkey")
	}
	if _, ok := x.t.users[m.UserID]; !ok {
		return foreignKey("team_memberships_user_id_fkey")
	}
	for _, other := range x.t.memberships {
		if other.TeamID == m.TeamID && other.UserID == m.UserID {
			return unique("team_memberships_team_user_key")
		}
	}
	x.t.memberships[m.ID] = *m
	x.stamp(m.ID)
	return nil
}

func (x *tx) GetMembership(ctx context.Context, teamID, userID uuid.UUID) (*model.TeamMembership, error) {
	for _, m := range x.t.memberships {
		if m.TeamID == teamID && m.UserID == userID {
			return &m, nil
		}
	}
	return nil, store.ErrNotFound
}

func (x *tx) ListMemberships(ctx context.Context, teamID uuid.UUID) ([]*model.TeamMembership, error) {
	var out []*model.TeamMembership
	for _, m := range x.t.memberships {
		if m.TeamID == teamID {
			out = append(out, &m)
		}
	}
	sortBySeq(x.t, out, func(m *model.TeamMembership) uuid.UUID { return m.ID })
	return out, nil
}

func (x *tx) UpdateMembership(ctx context.Context, m *model.TeamMembership) error {
	if _, ok := x.t.memberships[m.ID]; !ok {
		return store.ErrNotFound
	}
	x.t.memberships[m.ID] = *m
	return nil
}

func (x *tx) DeleteMembership(ctx context.Context, id uuid.UUID) error {
	if _, ok := x.t.memberships[id]; !ok {
		return store.ErrNotFound
	}
	delete(x.t.memberships, id)
	return nil
}

// --- categories ---

func (x *tx) checkCategoryUnique(c *model.Category) error {
	for id, other := range x.t.categories {
		if id != c.ID && other.Name == c.Name {
			return unique("categories_name_key")
		}
	}
	return nil
}

func (x *tx) CreateCategory(ctx context.Context, c *model.Category) error {
	if err := x.checkCategoryUnique(c); err != nil {
		return err
	}
	x.t.categories[c.ID] = *c
	x.stamp(c.ID)
	return nil
}

func (x *tx) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := x.t.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (x *tx) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	for _, c := range x.t.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (x *tx) ListCategories(ctx context.Context) ([]*model.Category, error) {
	out := make([]*model.Category, 0, len(x.t.categories))
	for _, c := range x.t.categories {
		out = append(out, &c)
	}
	sortBySeq(x.t, out, func(c *model.Category) uuid.UUID { return c.ID })
	return out, nil
}

func (x *tx) UpdateCategory(ctx context.Context, c *model.Category) error {
	if _, ok := x.t.categories[c.ID]; !ok {
		return store.ErrNotFound
	}
	if err := x.checkCategoryUnique(c); err != nil {
		return err
	}
	x.t.categories[c.ID] = *c
	return nil
}

func (x *tx) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, ok := x.t.categories[id]; !ok {
		return store.ErrNotFound
	}
	for pid, p := range x.t.projects {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			x.t.projects[pid] = p
		}
	}
	delete(x.t.categories, id)
	return nil
}

// --- projects ---

func (x *tx) checkProjectRefs(p *model.Project) error {
	if p.TeamID != nil {
		if _, ok := x.t.teams[*p.TeamID]; !ok {
			return foreignKey("projects_team_id_fkey")
		}
	}
	if p.CategoryID != nil {
		if _, ok := x.t.categories[*p.CategoryID]; !ok {
			return foreignKey("projects_category_id_fkey")
		}
	}
	return nil
}

func (x *tx) CreateProject(ctx context.Context, p *model.Project) error {
	if err := x.checkProjectRefs(p); err != nil {
		return err
	}
	x.t.projects[p.ID] = *p
	x.stamp(p.ID)
	return nil
}

func (x *tx) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	p, ok := x.t.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (x *tx) ListProjects(ctx context.Context, f model.ProjectFilter) ([]*model.Project, error) {
	var out []*model.Project
	for _, p := range x.t.projects {
		if f.TeamID != nil && (p.TeamID == nil || *p.TeamID != *f.TeamID) {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		out = append(out, &p)
	}
	sortBySeq(x.t, out, func(p *model.Project) uuid.UUID { return p.ID })
	return out, nil
}

func (x *tx) UpdateProject(ctx context.Context, p *model.Project) error {
	if _, ok := x.t.projects[p.ID]; !ok {
		return store.ErrNotFound
	}
	if err := x.checkProjectRefs(p); err != nil {
		return err
	}
	x.t.projects[p.ID] = *p
	return nil
}

func (x *tx) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if _, ok := x.t.projects[id]; !ok {
		return store.ErrNotFound
	}
	x.deleteProject(id)
	return nil
}

func (x *tx) deleteProject(id uuid.UUID) {
	for tid, t := range x.t.tasks {
		if t.ProjectID != nil && *t.ProjectID == id {
			delete(x.t.tasks, tid)
		}
	}
	delete(x.t.projects, id)
}

// --- tasks ---

func (x *tx) checkTaskRefs(t *model.Task) error {
	if t.ProjectID != nil {
		if _, ok := x.t.projects[*t.ProjectID]; !ok {
			return foreignKey("tasks_project_id_fkey")
		}
	}
	if !x.userExists(t.AssigneeID) {
		return foreignKey("tasks_assignee_id_fkey")
	}
	if !x.userExists(t.CreatedBy) {
		return foreignKey("tasks_created_by_fkey")
	}
	if !x.userExists(t.UpdatedBy) {
		return foreignKey("tasks_updated_by_fkey")
	}
	return nil
}

func (x *tx) CreateTask(ctx context.Context, t *model.Task) error {
	if err := x.checkTaskRefs(t); err != nil {
		return err
	}
	x.t.tasks[t.ID] = *t
	x.stamp(t.ID)
	return nil
}

func (x *tx) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	t, ok := x.t.tasks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (x *tx) ListTasks(ctx context.Context, f model.TaskFilter) ([]*model.Task, error) {
	var out []*model.Task
	for _, t := range x.t.tasks {
		if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
			continue
		}
		if f.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *f.AssigneeID) {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		out = append(out, &t)
	}
	sortBySeq(x.t, out, func(t *model.Task) uuid.UUID { return t.ID })
	return out, nil
}

func (x *tx) UpdateTask(ctx context.Context, t *model.Task) error {
	if _, ok := x.t.tasks[t.ID]; !ok {
		return store.ErrNotFound
	}
	if err := x.checkTaskRefs(t); err != nil {
		return err
	}
	x.t.tasks[t.ID] = *t
	return nil
}

func (x *tx) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, ok := x.t.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(x.t.tasks, id)
	return nil
}

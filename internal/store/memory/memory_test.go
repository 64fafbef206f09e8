package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/store"
	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func mustTx(t *testing.T, s *Store, fn func(tx store.Tx) error) {
	t.Helper()
	if err := s.WithTx(context.Background(), fn); err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func newUser(name string) *model.User {
	return &model.User{
		ID:        uuid.New(),
		Username:  name,
		Email:     name + "@example.com",
		Role:      model.RoleMember,
		CreatedAt: time.Now(),
	}
}

func TestRollbackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser("alice")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	mustTx(t, s, func(tx store.Tx) error {
		if _, err := tx.GetUser(ctx, u.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("user should have been rolled back, got err=%v", err)
		}
		return nil
	})
}

func TestUniqueUsernameAndEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	mustTx(t, s, func(tx store.Tx) error { return tx.CreateUser(ctx, newUser("alice")) })

	dup := newUser("alice")
	err := s.WithTx(ctx, func(tx store.Tx) error { return tx.CreateUser(ctx, dup) })
	var ce *store.ConstraintError
	if !errors.As(err, &ce) || ce.Kind != store.ConstraintUnique {
		t.Fatalf("expected unique violation, got %v", err)
	}

	other := newUser("bob")
	other.Email = "alice@example.com"
	err = s.WithTx(ctx, func(tx store.Tx) error { return tx.CreateUser(ctx, other) })
	if !errors.As(err, &ce) || ce.Constraint != "users_email_key" {
		t.Fatalf("expected email unique violation, got %v", err)
	}
}

func TestDeleteUserNullsReferences(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := newUser("alice")
	team := &model.Team{ID: uuid.New(), Name: "Eng", LeadID: &u.ID}
	task := &model.Task{ID: uuid.New(), Title: "t", Status: model.StatusPending, Priority: model.PriorityLow,
		AssigneeID: &u.ID, CreatedBy: &u.ID, UpdatedBy: &u.ID}

	mustTx(t, s, func(tx store.Tx) error {
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		if err := tx.CreateTeam(ctx, team); err != nil {
			return err
		}
		if err := tx.CreateMembership(ctx, &model.TeamMembership{ID: uuid.New(), TeamID: team.ID, UserID: u.ID, Role: model.MembershipLeader}); err != nil {
			return err
		}
		return tx.CreateTask(ctx, task)
	})

	mustTx(t, s, func(tx store.Tx) error { return tx.DeleteUser(ctx, u.ID) })

	mustTx(t, s, func(tx store.Tx) error {
		gotTeam, err := tx.GetTeam(ctx, team.ID)
		if err != nil {
			t.Fatalf("team should survive user delete: %v", err)
		}
		if gotTeam.LeadID != nil {
			t.Error("lead_id should be null after user delete")
		}
		gotTask, err := tx.GetTask(ctx, task.ID)
		if err != nil {
			t.Fatalf("task should survive user delete: %v", err)
		}
		if gotTask.AssigneeID != nil || gotTask.CreatedBy != nil || gotTask.UpdatedBy != nil {
			t.Errorf("task user references should be null: %+v", gotTask)
		}
		members, _ := tx.ListMemberships(ctx, team.ID)
		if len(members) != 0 {
			t.Errorf("memberships should cascade, got %d", len(members))
		}
		return nil
	})
}

func TestDeleteTeamCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	team := &model.Team{ID: uuid.New(), Name: "Eng"}
	project := &model.Project{ID: uuid.New(), Title: "p", Status: "planning", TeamID: &team.ID}
	task := &model.Task{ID: uuid.New(), Title: "t", Status: model.StatusPending, Priority: model.PriorityLow, ProjectID: &project.ID}

	mustTx(t, s, func(tx store.Tx) error {
		if err := tx.CreateTeam(ctx, team); err != nil {
			return err
		}
		if err := tx.CreateProject(ctx, project); err != nil {
			return err
		}
		return tx.CreateTask(ctx, task)
	})
	mustTx(t, s, func(tx store.Tx) error { return tx.DeleteTeam(ctx, team.ID) })

	mustTx(t, s, func(tx store.Tx) error {
		if _, err := tx.GetProject(ctx, project.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("project should cascade with team, got %v", err)
		}
		if _, err := tx.GetTask(ctx, task.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("task should cascade with project, got %v", err)
		}
		return nil
	})
}

func TestDeleteCategorySetsNull(t *testing.T) {
	s := New()
	ctx := context.Background()
	cat := &model.Category{ID: uuid.New(), Name: "ops", Color: ptr("#ff0000")}
	project := &model.Project{ID: uuid.New(), Title: "p", Status: "planning", CategoryID: &cat.ID}

	mustTx(t, s, func(tx store.Tx) error {
		if err := tx.CreateCategory(ctx, cat); err != nil {
			return err
		}
		return tx.CreateProject(ctx, project)
	})
	mustTx(t, s, func(tx store.Tx) error { return tx.DeleteCategory(ctx, cat.ID) })
	mustTx(t, s, func(tx store.Tx) error {
		p, err := tx.GetProject(ctx, project.ID)
		if err != nil {
			t.Fatalf("project should survive: %v", err)
		}
		if p.CategoryID != nil {
			t.Error("category_id should be null")
		}
		return nil
	})
}

func TestForeignKeyViolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	missing := uuid.New()
	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.CreateTask(ctx, &model.Task{ID: uuid.New(), Title: "t", ProjectID: &missing})
	})
	var ce *store.ConstraintError
	if !errors.As(err, &ce) || ce.Kind != store.ConstraintForeignKey {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
}

func TestListTasksFilterAndOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	project := &model.Project{ID: uuid.New(), Title: "p", Status: "planning"}
	var ids []uuid.UUID

	mustTx(t, s, func(tx store.Tx) error {
		if err := tx.CreateProject(ctx, project); err != nil {
			return err
		}
		for i, st := range []model.Status{model.StatusPending, model.StatusCompleted, model.StatusPending} {
			task := &model.Task{ID: uuid.New(), Title: "t", Status: st, Priority: model.PriorityLow}
			if i != 1 {
				task.ProjectID = &project.ID
			}
			ids = append(ids, task.ID)
			if err := tx.CreateTask(ctx, task); err != nil {
				return err
			}
		}
		return nil
	})

	mustTx(t, s, func(tx store.Tx) error {
		all, _ := tx.ListTasks(ctx, model.TaskFilter{})
		if len(all) != 3 {
			t.Fatalf("expected 3 tasks, got %d", len(all))
		}
		for i, task := range all {
			if task.ID != ids[i] {
				t.Errorf("position %d: expected insertion order", i)
			}
		}
		pending := model.StatusPending
		got, _ := tx.ListTasks(ctx, model.TaskFilter{ProjectID: &project.ID, Status: &pending})
		if len(got) != 2 {
			t.Errorf("expected 2 pending tasks in project, got %d", len(got))
		}
		return nil
	})
}

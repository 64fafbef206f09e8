package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/config"
	"github.com/alecgard/taskboard/internal/model"
	"github.com/alecgard/taskboard/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	seedAdminEmail    string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed an admin user and a demo team, project and task",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "admin@taskboard.local", "email of the seeded admin")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "password of the seeded admin (generated when empty)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, _, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.New(st, service.Options{
		Hasher:       service.BcryptHasher{Cost: cfg.Auth.BcryptCost},
		AllowedRoles: cfg.Membership.AllowedRoles,
	})

	// Check if seed has already run.
	users, err := svc.Users.List(ctx)
	if err != nil {
		return fmt.Errorf("checking existing users: %w", err)
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, seedAdminEmail) {
			slog.Info("admin already exists, skipping seed", "user_id", u.ID)
			return nil
		}
	}

	password := seedAdminPassword
	if password == "" {
		password = strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	}

	// The seed runs as a trusted operator, so it may create an admin.
	operator := &auth.Identity{Role: model.RoleAdmin}
	admin, err := svc.Users.Create(ctx, operator, model.CreateUserInput{
		Username: "admin",
		Email:    seedAdminEmail,
		Password: password,
		Role:     model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	slog.Info("created admin", "user_id", admin.ID)

	team, err := svc.Teams.Create(ctx, model.CreateTeamInput{
		Name:        "Demo Team",
		Description: ptr("Sample team created by seed"),
		LeadID:      &admin.ID,
	})
	if err != nil {
		return fmt.Errorf("creating demo team: %w", err)
	}

	category, err := svc.Categories.Create(ctx, model.CreateCategoryInput{
		Name:  "General",
		Color: ptr("#4f46e5"),
	})
	if err != nil {
		return fmt.Errorf("creating demo category: %w", err)
	}

	project, err := svc.Projects.Create(ctx, model.CreateProjectInput{
		Title:      "Getting Started",
		TeamID:     &team.ID,
		CategoryID: &category.ID,
	})
	if err != nil {
		return fmt.Errorf("creating demo project: %w", err)
	}

	priority := model.PriorityHigh
	task, err := svc.Tasks.Create(ctx, &auth.Identity{ID: admin.ID, Username: admin.Username, Role: admin.Role}, model.CreateTaskInput{
		Title:      "Explore the API from GET /",
		Priority:   &priority,
		ProjectID:  &project.ID,
		AssigneeID: &admin.ID,
	})
	if err != nil {
		return fmt.Errorf("creating demo task: %w", err)
	}

	fmt.Printf("\n=== Demo Data Seeded ===\n")
	fmt.Printf("Admin:     %s (%s)\n", admin.Email, admin.ID)
	fmt.Printf("Password:  %s\n", password)
	fmt.Printf("Team:      %s (%s)\n", team.Name, team.ID)
	fmt.Printf("Project:   %s (%s)\n", project.Title, project.ID)
	fmt.Printf("Task:      %s (%s)\n", task.Title, task.ID)
	fmt.Printf("\nTry it:\n")
	fmt.Printf("  curl -X POST http://localhost:%d/login -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", cfg.Server.Port, admin.Email, password)
	fmt.Printf("  curl http://localhost:%d/tasks?project_id=%s\n", cfg.Server.Port, project.ID)

	return nil
}

func ptr[T any](v T) *T { return &v }

package model

import (
	"time"

	"github.com/google/uuid"
)

// CreateUserInput holds the fields accepted when registering a user.
type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserInput is a partial user update.
type UpdateUserInput struct {
	Username Optional[string] `json:"username"`
	Email    Optional[string] `json:"email"`
	Password Optional[string] `json:"password"`
	Role     Optional[string] `json:"role"`
}

// CreateTeamInput holds the fields accepted when creating a team.
type CreateTeamInput struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	LeadID      *uuid.UUID `json:"lead_id"`
}

// UpdateTeamInput is a partial team update.
type UpdateTeamInput struct {
	Name        Optional[string]    `json:"name"`
	Description Optional[string]    `json:"description"`
	LeadID      Optional[uuid.UUID] `json:"lead_id"`
}

// AddMemberInput holds the fields accepted when adding a team member.
type AddMemberInput struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// UpdateMemberInput changes a membership role.
type UpdateMemberInput struct {
	Role string `json:"role"`
}

// CreateCategoryInput holds the fields accepted when creating a category.
type CreateCategoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// UpdateCategoryInput is a partial category update.
type UpdateCategoryInput struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
	Color       Optional[string] `json:"color"`
}

// CreateProjectInput holds the fields accepted when creating a project.
type CreateProjectInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Deadline    *time.Time `json:"deadline"`
	TeamID      *uuid.UUID `json:"team_id"`
	CategoryID  *uuid.UUID `json:"category_id"`
}

// UpdateProjectInput is a partial project update.
type UpdateProjectInput struct {
	Title       Optional[string]    `json:"title"`
	Description Optional[string]    `json:"description"`
	Status      Optional[string]    `json:"status"`
	Deadline    Optional[time.Time] `json:"deadline"`
	TeamID      Optional[uuid.UUID] `json:"team_id"`
	CategoryID  Optional[uuid.UUID] `json:"category_id"`
}

// CreateTaskInput holds the fields accepted when creating a task.
type CreateTaskInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      *Status    `json:"status"`
	Priority    *Priority  `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	ProjectID   *uuid.UUID `json:"project_id"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

// UpdateTaskInput is a partial task update.
type UpdateTaskInput struct {
	Title       Optional[string]    `json:"title"`
	Description Optional[string]    `json:"description"`
	Status      Optional[Status]    `json:"status"`
	Priority    Optional[Priority]  `json:"priority"`
	Deadline    Optional[time.Time] `json:"deadline"`
	ProjectID   Optional[uuid.UUID] `json:"project_id"`
	AssigneeID  Optional[uuid.UUID] `json:"assignee_id"`
}

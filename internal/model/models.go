package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Membership roles with special meaning.
const (
	MembershipLeader = "leader"
	MembershipMember = "member"
)

// DefaultProjectStatus is assigned when a project is created without a status.
const DefaultProjectStatus = "planning"

// User represents a registered account.
type User struct {
	ID           uuid.UUID  `json:"user_id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Team groups users and owns projects.
type Team struct {
	ID          uuid.UUID  `json:"team_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	LeadID      *uuid.UUID `json:"lead_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TeamMembership links a user to a team with a role.
type TeamMembership struct {
	ID     uuid.UUID `json:"membership_id"`
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// TeamDetail is a team together with its memberships.
type TeamDetail struct {
	Team
	Members []*TeamMembership `json:"members"`
}

// Category classifies projects.
type Category struct {
	ID          uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       *string   `json:"color"`
}

// Project belongs to an optional team and category and owns tasks.
type Project struct {
	ID          uuid.UUID  `json:"project_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Deadline    *time.Time `json:"deadline"`
	TeamID      *uuid.UUID `json:"team_id"`
	CategoryID  *uuid.UUID `json:"category_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Task is a unit of work inside an optional project.
type Task struct {
	ID          uuid.UUID  `json:"task_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	ProjectID   *uuid.UUID `json:"project_id"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	CreatedBy   *uuid.UUID `json:"created_by"`
	UpdatedBy   *uuid.UUID `json:"updated_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskFilter narrows a task listing. Nil fields are not applied.
type TaskFilter struct {
	ProjectID  *uuid.UUID
	AssigneeID *uuid.UUID
	Status     *Status
}

// ProjectFilter narrows a project listing. Nil fields are not applied.
type ProjectFilter struct {
	TeamID     *uuid.UUID
	CategoryID *uuid.UUID
}

package hypermedia

import "github.com/alecgard/taskboard/internal/validate"

// Related describes a link from an entity to another resource. Params maps
// route placeholders and Query maps query keys to fields of the entity. The
// link is omitted when any referenced field is empty.
type Related struct {
	Rel    string
	Route  string
	Title  string
	Params map[string]string
	Query  map[string]string
}

// Resource describes how an entity is addressed.
type Resource struct {
	Name       string
	IDField    string
	Item       string
	Collection string
	// Params maps route placeholders of Item and Collection to entity fields.
	Params  map[string]string
	Create  *validate.Schema
	Update  *validate.Schema
	Related []Related
}

var (
	UserResource = &Resource{
		Name:       "user",
		IDField:    "user_id",
		Item:       RouteUser,
		Collection: RouteUsers,
		Params:     map[string]string{"user_id": "user_id"},
		Create:     validate.User,
		Update:     validate.UserUpdate,
		Related: []Related{
			{Rel: "tasks", Route: RouteTasks, Title: "Tasks assigned to this user", Query: map[string]string{"assignee_id": "user_id"}},
		},
	}

	TeamResource = &Resource{
		Name:       "team",
		IDField:    "team_id",
		Item:       RouteTeam,
		Collection: RouteTeams,
		Params:     map[string]string{"team_id": "team_id"},
		Create:     validate.Team,
		Update:     validate.TeamUpdate,
		Related: []Related{
			{Rel: "members", Route: RouteMembers, Title: "Team members", Params: map[string]string{"team_id": "team_id"}},
			{Rel: "projects", Route: RouteProjects, Title: "Team projects", Query: map[string]string{"team_id": "team_id"}},
			{Rel: "lead", Route: RouteUser, Title: "Team lead", Params: map[string]string{"user_id": "lead_id"}},
		},
	}

	MembershipResource = &Resource{
		Name:       "membership",
		IDField:    "membership_id",
		Item:       RouteMember,
		Collection: RouteMembers,
		Params:     map[string]string{"team_id": "team_id", "user_id": "user_id"},
		Create:     validate.Membership,
		Update:     validate.MembershipUpdate,
		Related: []Related{
			{Rel: "team", Route: RouteTeam, Title: "Team", Params: map[string]string{"team_id": "team_id"}},
			{Rel: "user", Route: RouteUser, Title: "Member", Params: map[string]string{"user_id": "user_id"}},
		},
	}

	CategoryResource = &Resource{
		Name:       "category",
		IDField:    "category_id",
		Item:       RouteCategory,
		Collection: RouteCategories,
		Params:     map[string]string{"category_id": "category_id"},
		Create:     validate.Category,
		Update:     validate.CategoryUpdate,
		Related: []Related{
			{Rel: "projects", Route: RouteProjects, Title: "Projects in this category", Query: map[string]string{"category_id": "category_id"}},
		},
	}

	ProjectResource = &Resource{
		Name:       "project",
		IDField:    "project_id",
		Item:       RouteProject,
		Collection: RouteProjects,
		Params:     map[string]string{"project_id": "project_id"},
		Create:     validate.Project,
		Update:     validate.ProjectUpdate,
		Related: []Related{
			{Rel: "tasks", Route: RouteTasks, Title: "Project tasks", Query: map[string]string{"project_id": "project_id"}},
			{Rel: "team", Route: RouteTeam, Title: "Owning team", Params: map[string]string{"team_id": "team_id"}},
			{Rel: "category", Route: RouteCategory, Title: "Category", Params: map[string]string{"category_id": "category_id"}},
		},
	}

	TaskResource = &Resource{
		Name:       "task",
		IDField:    "task_id",
		Item:       RouteTask,
		Collection: RouteTasks,
		Params:     map[string]string{"task_id": "task_id"},
		Create:     validate.Task,
		Update:     validate.TaskUpdate,
		Related: []Related{
			{Rel: "project", Route: RouteProject, Title: "Project", Params: map[string]string{"project_id": "project_id"}},
			{Rel: "assignee", Route: RouteUser, Title: "Assignee", Params: map[string]string{"user_id": "assignee_id"}},
		},
	}
)

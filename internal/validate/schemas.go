package validate

// Request schemas for every writable resource.
var (
	User = &Schema{
		Name: "user",
		Fields: map[string]Field{
			"username": {Type: TypeString, MinLength: 3, MaxLength: 80},
			"email":    {Type: TypeEmail, MaxLength: 120},
			"password": {Type: TypeString, MinLength: 8, MaxLength: 128},
			"role":     {Type: TypeString, Enum: []string{"member", "admin"}},
		},
		Required: []string{"username", "email", "password"},
	}
	UserUpdate = User.Partial()

	Login = &Schema{
		Name: "login",
		Fields: map[string]Field{
			"email":    {Type: TypeString, MinLength: 1},
			"password": {Type: TypeString, MinLength: 1},
		},
		Required: []string{"email", "password"},
	}

	Team = &Schema{
		Name: "team",
		Fields: map[string]Field{
			"name":        {Type: TypeString, MinLength: 1, MaxLength: 100},
			"description": {Type: TypeString, Nullable: true},
			"lead_id":     {Type: TypeUUID, Nullable: true},
		},
		Required: []string{"name"},
	}
	TeamUpdate = Team.Partial()

	Membership = &Schema{
		Name: "team_membership",
		Fields: map[string]Field{
			"user_id": {Type: TypeUUID},
			"role":    {Type: TypeString, MinLength: 1, MaxLength: 50},
		},
		Required: []string{"user_id", "role"},
	}
	MembershipUpdate = &Schema{
		Name: "team_membership_update",
		Fields: map[string]Field{
			"role": {Type: TypeString, MinLength: 1, MaxLength: 50},
		},
		Required: []string{"role"},
	}

	Category = &Schema{
		Name: "category",
		Fields: map[string]Field{
			"name":        {Type: TypeString, MinLength: 1, MaxLength: 50},
			"description": {Type: TypeString, Nullable: true},
			"color":       {Type: TypeString, Nullable: true, MaxLength: 32},
		},
		Required: []string{"name"},
	}
	CategoryUpdate = Category.Partial()

	Project = &Schema{
		Name: "project",
		Fields: map[string]Field{
			"title":       {Type: TypeString, MinLength: 1, MaxLength: 200},
			"description": {Type: TypeString, Nullable: true},
			"status":      {Type: TypeString, MinLength: 1, MaxLength: 50},
			"deadline":    {Type: TypeDateTime, Nullable: true},
			"team_id":     {Type: TypeUUID, Nullable: true},
			"category_id": {Type: TypeUUID, Nullable: true},
		},
		Required: []string{"title"},
	}
	ProjectUpdate = Project.Partial()

	Task = &Schema{
		Name: "task",
		Fields: map[string]Field{
			"title":       {Type: TypeString, MinLength: 1, MaxLength: 200},
			"description": {Type: TypeString, Nullable: true},
			"status":      {Type: TypeString, Enum: []string{"pending", "in_progress", "completed"}},
			"priority":    {Type: TypePriority},
			"deadline":    {Type: TypeDateTime, Nullable: true},
			"project_id":  {Type: TypeUUID, Nullable: true},
			"assignee_id": {Type: TypeUUID, Nullable: true},
		},
		Required: []string{"title"},
	}
	TaskUpdate = Task.Partial()
)

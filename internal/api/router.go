package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/cache"
	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/metrics"
	"github.com/alecgard/taskboard/internal/ratelimit"
	"github.com/alecgard/taskboard/internal/service"
	"github.com/alecgard/taskboard/internal/validate"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterDeps holds all dependencies for the API router. It is built once at
// startup and shared by every request.
type RouterDeps struct {
	Service   *service.Service
	Tokens    *auth.TokenManager
	Auth      *auth.Authenticator
	Validator *validate.Validator // nil: validation enabled
	Links     *hypermedia.Builder // nil: host-relative links
	Cache     *cache.Cache        // nil: no caching
	Limiter   *ratelimit.Limiter  // guards POST /login; nil: unlimited
	Metrics   *metrics.Metrics    // nil: no /metrics endpoints
	Health    Pinger              // nil: in-process store
	CORS      CORSOptions         // zero value: CORS disabled
}

// NewRouter builds the chi router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	if deps.Validator == nil {
		deps.Validator = validate.New(validate.Options{})
	}
	if deps.Links == nil {
		deps.Links = hypermedia.NewBuilder(hypermedia.DefaultRoutes, "", slog.Default())
	}
	if deps.Cache == nil {
		deps.Cache = cache.New(nil, cache.Options{})
	}

	b := &base{
		svc:     deps.Service,
		links:   deps.Links,
		cache:   deps.Cache,
		metrics: deps.Metrics,
	}
	v := func(s *validate.Schema) func(http.Handler) http.Handler {
		return deps.Validator.Middleware(s, b.writeServiceError)
	}

	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.RealIP)
	r.Use(requestIDMiddleware)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(slogRequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(secureHeaders)
	r.Use(corsMiddleware(deps.CORS))
	r.Use(chimw.StripSlashes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorEnvelope{
			Error:   "not_found",
			Message: "resource not found",
			Links:   b.links.RootLinks(),
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{
			Error:   "method_not_allowed",
			Message: r.Method + " is not allowed on " + r.URL.Path,
			Links:   b.links.RootLinks(),
		})
	})

	// Handlers.
	authn := newAuthHandler(b, deps.Tokens)
	users := &usersHandler{b}
	teams := &teamsHandler{b}
	members := &membersHandler{b}
	categories := &categoriesHandler{b}
	projects := &projectsHandler{b}
	tasks := &tasksHandler{b}

	r.Get("/health", healthHandler(deps.Health))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Exposition())
		r.Get("/metrics/summary", deps.Metrics.Handler())
	}

	var onReject []func()
	if deps.Metrics != nil {
		onReject = append(onReject, func() { deps.Metrics.IncRateLimitRejection("login") })
	}
	r.With(ratelimit.Middleware(deps.Limiter, ratelimit.ClientIP, onReject...), v(validate.Login)).
		Post("/login", authn.Login)

	// Public routes. A valid token is optional and only scopes the cache, or
	// lets an admin create another admin through sign-up.
	r.Group(func(pr chi.Router) {
		pr.Use(deps.Auth.Optional)

		pr.With(v(validate.User)).Post("/users", users.CreateUser)

		pr.Group(func(cr chi.Router) {
			cr.Use(deps.Cache.Middleware)

			cr.Get("/", b.rootHandler)
			cr.Get("/users", users.ListUsers)
			cr.Get("/users/{user_id}", users.GetUser)
			cr.Get("/teams", teams.ListTeams)
			cr.Get("/teams/{team_id}", teams.GetTeam)
			cr.Get("/teams/{team_id}/members", members.ListMembers)
			cr.Get("/teams/{team_id}/members/{user_id}", members.GetMember)
			cr.Get("/categories", categories.ListCategories)
			cr.Get("/categories/{category_id}", categories.GetCategory)
			cr.Get("/projects", projects.ListProjects)
			cr.Get("/projects/{project_id}", projects.GetProject)
			cr.Get("/tasks", tasks.ListTasks)
			cr.Get("/tasks/{task_id}", tasks.GetTask)
		})
	})

	// Authenticated routes.
	r.Group(func(ar chi.Router) {
		ar.Use(deps.Auth.Required)

		ar.Get("/me", authn.Me)

		ar.With(v(validate.UserUpdate)).Put("/users/{user_id}", users.UpdateUser)
		ar.Delete("/users/{user_id}", users.DeleteUser)

		ar.With(v(validate.Team)).Post("/teams", teams.CreateTeam)
		ar.With(v(validate.TeamUpdate)).Put("/teams/{team_id}", teams.UpdateTeam)
		ar.Delete("/teams/{team_id}", teams.DeleteTeam)

		ar.With(v(validate.Membership)).Post("/teams/{team_id}/members", members.AddMember)
		ar.With(v(validate.MembershipUpdate)).Put("/teams/{team_id}/members/{user_id}", members.UpdateMember)
		ar.Delete("/teams/{team_id}/members/{user_id}", members.RemoveMember)

		ar.With(v(validate.Category)).Post("/categories", categories.CreateCategory)
		ar.With(v(validate.CategoryUpdate)).Put("/categories/{category_id}", categories.UpdateCategory)
		ar.Delete("/categories/{category_id}", categories.DeleteCategory)

		ar.With(v(validate.Project)).Post("/projects", projects.CreateProject)
		ar.With(v(validate.ProjectUpdate)).Put("/projects/{project_id}", projects.UpdateProject)
		ar.Delete("/projects/{project_id}", projects.DeleteProject)

		ar.With(v(validate.Task)).Post("/tasks", tasks.CreateTask)
		ar.With(v(validate.TaskUpdate)).Put("/tasks/{task_id}", tasks.UpdateTask)
		ar.Delete("/tasks/{task_id}", tasks.DeleteTask)
	})

	return r
}

// slogRequestLogger is a simple structured logging middleware using slog.
func slogRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.BytesWritten(),
			"request_id", RequestIDFromContext(r.Context()),
		)
	})
}

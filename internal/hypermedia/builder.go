// Package hypermedia adds _links to API responses.
package hypermedia

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Route names.
const (
	RouteRoot       = "root"
	RouteLogin      = "login"
	RouteUsers      = "users"
	RouteUser       = "user"
	RouteTeams      = "teams"
	RouteTeam       = "team"
	RouteMembers    = "members"
	RouteMember     = "member"
	RouteCategories = "categories"
	RouteCategory   = "category"
	RouteProjects   = "projects"
	RouteProject    = "project"
	RouteTasks      = "tasks"
	RouteTask       = "task"
)

// Routes maps route names to chi-style path patterns.
type Routes map[string]string

// DefaultRoutes mirrors the API router.
var DefaultRoutes = Routes{
	RouteRoot:       "/",
	RouteLogin:      "/login",
	RouteUsers:      "/users",
	RouteUser:       "/users/{user_id}",
	RouteTeams:      "/teams",
	RouteTeam:       "/teams/{team_id}",
	RouteMembers:    "/teams/{team_id}/members",
	RouteMember:     "/teams/{team_id}/members/{user_id}",
	RouteCategories: "/categories",
	RouteCategory:   "/categories/{category_id}",
	RouteProjects:   "/projects",
	RouteProject:    "/projects/{project_id}",
	RouteTasks:      "/tasks",
	RouteTask:       "/tasks/{task_id}",
}

// Link is a single hypermedia control. Href is null when the target could
// not be resolved.
type Link struct {
	Href   *string `json:"href"`
	Method string  `json:"method"`
	Title  string  `json:"title,omitempty"`
	Schema any     `json:"schema,omitempty"`
}

// Links is the _links object.
type Links map[string]Link

// Builder resolves route names into URLs.
type Builder struct {
	routes Routes
	base   string
	logger *slog.Logger
}

// NewBuilder creates a Builder. base is prefixed to every path and may be
// empty for host-relative links.
func NewBuilder(routes Routes, base string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		routes: routes,
		base:   strings.TrimRight(base, "/"),
		logger: logger,
	}
}

// URL builds the URL for the named route. It fails for unknown names and for
// placeholders without a value in params.
func (b *Builder) URL(name string, params map[string]string, query url.Values) (string, error) {
	pattern, ok := b.routes[name]
	if !ok {
		return "", fmt.Errorf("unknown route %q", name)
	}

	var sb strings.Builder
	rest := pattern
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			sb.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("route %q: unterminated placeholder", name)
		}
		end += open
		key := rest[open+1 : end]
		val, ok := params[key]
		if !ok || val == "" {
			return "", fmt.Errorf("route %q: missing parameter %q", name, key)
		}
		sb.WriteString(rest[:open])
		sb.WriteString(url.PathEscape(val))
		rest = rest[end+1:]
	}

	u := b.base + sb.String()
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u, nil
}

// Link resolves a link. Resolution failures produce a null href and are
// logged at debug level.
func (b *Builder) Link(name, method, title string, params map[string]string, query url.Values) Link {
	l := Link{Method: method, Title: title}
	href, err := b.URL(name, params, query)
	if err != nil {
		b.logger.Debug("hypermedia link unresolved", "route", name, "error", err)
		return l
	}
	l.Href = &href
	return l
}

package hypermedia

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/alecgard/taskboard/internal/validate"
)

// LinksKey is the response key holding hypermedia controls.
const LinksKey = "_links"

// ToMap converts an entity into its JSON object form so links can be added.
func ToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding entity: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("entity is not an object: %w", err)
	}
	return m, nil
}

func field(m map[string]any, name string) (string, bool) {
	s, ok := m[name].(string)
	return s, ok && s != ""
}

func extract(m map[string]any, mapping map[string]string) (map[string]string, bool) {
	out := make(map[string]string, len(mapping))
	for placeholder, f := range mapping {
		v, ok := field(m, f)
		if !ok {
			return nil, false
		}
		out[placeholder] = v
	}
	return out, true
}

// Decorate writes _links onto an entity. Values that are not objects, or
// objects without the resource's id field, are returned unchanged. Existing
// links are replaced, so decorating twice yields the same result.
func (b *Builder) Decorate(res *Resource, v any) any {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return v
	}
	if _, ok := field(m, res.IDField); !ok {
		return v
	}

	p, _ := extract(m, res.Params)
	links := Links{
		"self":       b.Link(res.Item, http.MethodGet, "", p, nil),
		"update":     b.withSchema(b.Link(res.Item, http.MethodPut, "Update "+res.Name, p, nil), res.Update),
		"delete":     b.Link(res.Item, http.MethodDelete, "Delete "+res.Name, p, nil),
		"collection": b.Link(res.Collection, http.MethodGet, "", p, nil),
		"root":       b.Link(RouteRoot, http.MethodGet, "", nil, nil),
	}

	for _, rel := range res.Related {
		rp, ok := extract(m, rel.Params)
		if !ok {
			continue
		}
		q, ok := extract(m, rel.Query)
		if !ok {
			continue
		}
		var query url.Values
		if len(q) > 0 {
			query = url.Values{}
			for k, v := range q {
				query.Set(k, v)
			}
		}
		links[rel.Rel] = b.Link(rel.Route, http.MethodGet, rel.Title, rp, query)
	}

	m[LinksKey] = links
	return m
}

// DecorateAll decorates every item in place.
func (b *Builder) DecorateAll(res *Resource, items []map[string]any) []map[string]any {
	for i := range items {
		b.Decorate(res, items[i])
	}
	return items
}

// Collection wraps items in the collection envelope. filters holds the
// active query filters; each one gets a clear_<name>_filter link that keeps
// the others. params fills route placeholders of nested collections.
func (b *Builder) Collection(res *Resource, key string, items []map[string]any, filters map[string]string, params map[string]string) map[string]any {
	if items == nil {
		items = []map[string]any{}
	}
	b.DecorateAll(res, items)

	active := url.Values{}
	names := make([]string, 0, len(filters))
	for k, v := range filters {
		if v == "" {
			continue
		}
		active.Set(k, v)
		names = append(names, k)
	}
	sort.Strings(names)

	links := Links{
		"self":   b.Link(res.Collection, http.MethodGet, "", params, active),
		"create": b.withSchema(b.Link(res.Collection, http.MethodPost, "Create "+res.Name, params, nil), res.Create),
		"root":   b.Link(RouteRoot, http.MethodGet, "", nil, nil),
	}
	for _, name := range names {
		rest := url.Values{}
		for k, v := range active {
			if k != name {
				rest[k] = v
			}
		}
		links["clear_"+name+"_filter"] = b.Link(res.Collection, http.MethodGet, "Remove "+name+" filter", params, rest)
	}

	return map[string]any{
		key:      items,
		LinksKey: links,
	}
}

// Deleted builds the confirmation body returned after a delete.
func (b *Builder) Deleted(res *Resource, entity map[string]any) map[string]any {
	p, _ := extract(entity, res.Params)
	return map[string]any{
		"message": res.Name + " deleted",
		res.Name:  entity,
		LinksKey: Links{
			"collection": b.Link(res.Collection, http.MethodGet, "", p, nil),
			"root":       b.Link(RouteRoot, http.MethodGet, "", nil, nil),
		},
	}
}

// Root returns the discovery document served at /.
func (b *Builder) Root() map[string]any {
	return map[string]any{
		"name": "taskboard",
		LinksKey: Links{
			"self":       b.Link(RouteRoot, http.MethodGet, "", nil, nil),
			"users":      b.Link(RouteUsers, http.MethodGet, "Users", nil, nil),
			"teams":      b.Link(RouteTeams, http.MethodGet, "Teams", nil, nil),
			"projects":   b.Link(RouteProjects, http.MethodGet, "Projects", nil, nil),
			"tasks":      b.Link(RouteTasks, http.MethodGet, "Tasks", nil, nil),
			"categories": b.Link(RouteCategories, http.MethodGet, "Categories", nil, nil),
			"login":      b.withSchema(b.Link(RouteLogin, http.MethodPost, "Obtain an access token", nil, nil), validate.Login),
		},
	}
}

// RootLinks is attached to error responses.
func (b *Builder) RootLinks() Links {
	return Links{"root": b.Link(RouteRoot, http.MethodGet, "", nil, nil)}
}

func (b *Builder) withSchema(l Link, s *validate.Schema) Link {
	if s != nil {
		l.Schema = s
	}
	return l
}

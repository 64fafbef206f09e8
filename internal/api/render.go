package api

import (
	"net/http"

	"github.com/alecgard/taskboard/internal/cache"
	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/metrics"
	"github.com/alecgard/taskboard/internal/service"
)

// base carries what every resource handler needs.
type base struct {
	svc     *service.Service
	links   *hypermedia.Builder
	cache   *cache.Cache
	metrics *metrics.Metrics
}

// decorated converts v to its JSON object form with _links.
func (b *base) decorated(res *hypermedia.Resource, v any) (map[string]any, error) {
	m, err := hypermedia.ToMap(v)
	if err != nil {
		return nil, err
	}
	b.links.Decorate(res, m)
	return m, nil
}

// entity writes a single decorated entity.
func (b *base) entity(w http.ResponseWriter, r *http.Request, status int, res *hypermedia.Resource, v any) {
	m, err := b.decorated(res, v)
	if err != nil {
		b.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, status, m)
}

// deleted writes the delete confirmation for v.
func (b *base) deleted(w http.ResponseWriter, r *http.Request, res *hypermedia.Resource, v any) {
	m, err := hypermedia.ToMap(v)
	if err != nil {
		b.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.links.Deleted(res, m))
}

// collection writes items in the collection envelope under key.
func collection[T any](b *base, w http.ResponseWriter, r *http.Request, res *hypermedia.Resource, key string, items []T, filters, params map[string]string) {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		m, err := hypermedia.ToMap(it)
		if err != nil {
			b.writeServiceError(w, r, err)
			return
		}
		out = append(out, m)
	}
	writeJSON(w, http.StatusOK, b.links.Collection(res, key, out, filters, params))
}

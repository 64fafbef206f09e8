package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alecgard/taskboard/internal/auth"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// AnonymousScope is the cache scope of unauthenticated requests.
const AnonymousScope = "anonymous"

// Options configures a Cache.
type Options struct {
	Prefix string
	TTL    time.Duration
	// OnLookup is called after every lookup with whether it hit.
	OnLookup func(hit bool)
}

// Cache caches JSON GET responses per caller.
type Cache struct {
	backend  Backend
	prefix   string
	ttl      time.Duration
	onLookup func(hit bool)
}

// New creates a Cache over backend.
func New(backend Backend, opts Options) *Cache {
	if backend == nil {
		backend = Noop{}
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "taskboard"
	}
	return &Cache{
		backend:  backend,
		prefix:   prefix,
		ttl:      opts.TTL,
		onLookup: opts.OnLookup,
	}
}

func normalizePath(p string) string {
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		p = "/"
	}
	return p
}

// Key builds the cache key <prefix>:<path>?<query>|<scope>. The query is
// re-encoded so parameter order does not matter.
func (c *Cache) Key(r *http.Request, scope string) string {
	return c.prefix + ":" + normalizePath(r.URL.Path) + "?" + r.URL.Query().Encode() + "|" + scope
}

func scopeOf(r *http.Request) string {
	if id := auth.IdentityFromContext(r.Context()); id != nil {
		return id.ID.String()
	}
	return AnonymousScope
}

// Middleware serves cached 200 responses to GET requests and stores fresh
// ones. It must run after authentication so the caller's scope is known.
func (c *Cache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := c.Key(r, scopeOf(r))
		body, err := c.backend.Get(r.Context(), key)
		if err != nil && !errors.Is(err, ErrMiss) {
			slog.Warn("cache lookup failed", "key", key, "error", err)
		}
		if err == nil {
			c.observe(true)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}
		c.observe(false)

		w.Header().Set("X-Cache", "MISS")
		var buf bytes.Buffer
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&buf)
		next.ServeHTTP(ww, r)

		if ww.Status() != http.StatusOK {
			return
		}
		if err := c.backend.Set(r.Context(), key, buf.Bytes(), c.ttl); err != nil {
			slog.Warn("cache store failed", "key", key, "error", err)
		}
	})
}

func (c *Cache) observe(hit bool) {
	if c.onLookup != nil {
		c.onLookup(hit)
	}
}

// Invalidate drops every cached response for each path and everything below
// it, for all callers.
func (c *Cache) Invalidate(ctx context.Context, paths ...string) error {
	var errs []error
	for _, p := range paths {
		base := c.prefix + ":" + normalizePath(p)
		if err := c.backend.DeletePrefix(ctx, base+"?"); err != nil {
			errs = append(errs, err)
		}
		if base != c.prefix+":/" {
			if err := c.backend.DeletePrefix(ctx, base+"/"); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

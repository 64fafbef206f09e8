package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CORSOptions is the cross-origin policy for browser clients. An empty
// AllowedOrigins disables CORS entirely.
type CORSOptions struct {
	AllowedOrigins []string // "*" admits any origin
	AllowedMethods []string // default: GET, POST, PUT, DELETE
	AllowedHeaders []string // default: Authorization, Content-Type, X-Request-ID
	MaxAge         time.Duration
}

// exposedHeaders are the response headers taskboard handlers set that
// browser scripts may read.
var exposedHeaders = []string{
	"X-Request-ID",
	"X-Cache",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
	"Retry-After",
}

type corsPolicy struct {
	allowAll bool
	origins  map[string]bool
	methods  map[string]bool

	allowMethods string
	allowHeaders string
	maxAge       string
	expose       string
}

func newCORSPolicy(o CORSOptions) *corsPolicy {
	if len(o.AllowedMethods) == 0 {
		o.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}
	}
	if len(o.AllowedHeaders) == 0 {
		o.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}

	p := &corsPolicy{
		origins: make(map[string]bool, len(o.AllowedOrigins)),
		methods: make(map[string]bool, len(o.AllowedMethods)),
		expose:  strings.Join(exposedHeaders, ", "),
	}
	for _, origin := range o.AllowedOrigins {
		if origin == "*" {
			p.allowAll = true
		}
		p.origins[origin] = true
	}
	methods := make([]string, 0, len(o.AllowedMethods))
	for _, m := range o.AllowedMethods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" || p.methods[m] {
			continue
		}
		p.methods[m] = true
		methods = append(methods, m)
	}
	headers := make([]string, 0, len(o.AllowedHeaders))
	for _, h := range o.AllowedHeaders {
		if h = strings.TrimSpace(h); h != "" {
			headers = append(headers, http.CanonicalHeaderKey(h))
		}
	}
	p.allowMethods = strings.Join(methods, ", ")
	p.allowHeaders = strings.Join(headers, ", ")
	if o.MaxAge > 0 {
		p.maxAge = strconv.Itoa(int(o.MaxAge / time.Second))
	}
	return p
}

func (p *corsPolicy) enabled() bool { return len(p.origins) > 0 }

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is not admitted.
func (p *corsPolicy) allowOrigin(origin string) string {
	switch {
	case origin == "":
		return ""
	case p.allowAll:
		return "*"
	case p.origins[origin]:
		return origin
	}
	return ""
}

// corsMiddleware applies the policy. Preflights from admitted origins are
// answered here; a preflight asking for a method outside the policy gets a
// 403. Everything else reaches the router, so OPTIONS from unknown origins
// falls through to the usual 405.
func corsMiddleware(o CORSOptions) func(http.Handler) http.Handler {
	p := newCORSPolicy(o)

	return func(next http.Handler) http.Handler {
		if !p.enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			allowed := p.allowOrigin(origin)
			if allowed == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				h.Add("Vary", "Origin")
			}

			reqMethod := r.Header.Get("Access-Control-Request-Method")
			if r.Method != http.MethodOptions || reqMethod == "" {
				h.Set("Access-Control-Expose-Headers", p.expose)
				next.ServeHTTP(w, r)
				return
			}

			if !p.methods[strings.ToUpper(reqMethod)] {
				writeError(w, http.StatusForbidden, "cors_method_not_allowed",
					"method "+reqMethod+" is not allowed for cross-origin requests")
				return
			}
			h.Set("Access-Control-Allow-Methods", p.allowMethods)
			h.Set("Access-Control-Allow-Headers", p.allowHeaders)
			if p.maxAge != "" {
				h.Set("Access-Control-Max-Age", p.maxAge)
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

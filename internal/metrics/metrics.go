package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metric collectors for the Taskboard API.
type Metrics struct {
	registry *prometheus.Registry
	now      func() time.Time

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Response cache.
	CacheLookupsTotal       *prometheus.CounterVec
	CacheInvalidationErrors prometheus.Counter

	// Auth metrics.
	AuthOutcomesTotal *prometheus.CounterVec
	LoginsTotal       *prometheus.CounterVec

	RateLimitRejectionsTotal *prometheus.CounterVec

	// Writes by resource and action.
	MutationsTotal *prometheus.CounterVec

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all Prometheus metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		now:      time.Now,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		HTTPResponseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskboard_http_response_size_bytes",
			Help:    "HTTP response size in bytes.",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		}, []string{"method", "path_pattern"}),

		CacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_cache_lookups_total",
			Help: "Total number of response cache lookups by result.",
		}, []string{"result"}),

		CacheInvalidationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskboard_cache_invalidation_errors_total",
			Help: "Total number of failed cache invalidations.",
		}),

		AuthOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_auth_outcomes_total",
			Help: "Total number of bearer token resolutions by outcome.",
		}, []string{"outcome"}),

		LoginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_logins_total",
			Help: "Total number of login attempts by result.",
		}, []string{"result"}),

		RateLimitRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_ratelimit_rejections_total",
			Help: "Total number of rate limit rejections.",
		}, []string{"limiter"}),

		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskboard_mutations_total",
			Help: "Total number of successful writes by resource and action.",
		}, []string{"resource", "action"}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskboard_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.CacheLookupsTotal,
		m.CacheInvalidationErrors,
		m.AuthOutcomesTotal,
		m.LoginsTotal,
		m.RateLimitRejectionsTotal,
		m.MutationsTotal,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(m.now().Unix()))

	// Register Go runtime and process collectors.
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Exposition serves the registry in the Prometheus text format.
func (m *Metrics) Exposition() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterDBPoolCollector registers a custom DB pool stats collector.
func (m *Metrics) RegisterDBPoolCollector(statFunc DBPoolStatFunc) {
	m.registry.MustRegister(NewDBPoolCollector(statFunc))
}

// ObserveCacheLookup counts a response cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// IncCacheInvalidationError counts a failed invalidation.
func (m *Metrics) IncCacheInvalidationError() {
	m.CacheInvalidationErrors.Inc()
}

// IncAuthOutcome counts a bearer token resolution.
func (m *Metrics) IncAuthOutcome(outcome string) {
	m.AuthOutcomesTotal.WithLabelValues(outcome).Inc()
}

// IncLogin counts a login attempt.
func (m *Metrics) IncLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// IncRateLimitRejection increments the rate limit rejection counter.
func (m *Metrics) IncRateLimitRejection(limiter string) {
	m.RateLimitRejectionsTotal.WithLabelValues(limiter).Inc()
}

// IncMutation counts a successful create, update or delete.
func (m *Metrics) IncMutation(resource, action string) {
	m.MutationsTotal.WithLabelValues(resource, action).Inc()
}

// Middleware records request count, duration and response size per route
// pattern. Requests that match no route are reported as "unmatched" so
// arbitrary paths cannot blow up label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := m.now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				pattern = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, pattern).Observe(m.now().Sub(start).Seconds())
		m.HTTPResponseSize.WithLabelValues(r.Method, pattern).Observe(float64(ww.BytesWritten()))
	})
}

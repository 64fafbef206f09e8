package metrics

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"

	dto "github.com/prometheus/client_model/go"
)

// Summary is the JSON response for the metrics summary endpoint.
type Summary struct {
	HTTP      httpSummary        `json:"http"`
	Cache     cacheInfo          `json:"cache"`
	Auth      map[string]float64 `json:"auth"`
	Logins    loginInfo          `json:"logins"`
	RateLimit rateLimitInfo      `json:"rateLimit"`
	Mutations map[string]float64 `json:"mutations"`
	DB        dbInfo             `json:"db"`
	Server    serverInfo         `json:"server"`
}

type httpSummary struct {
	TotalRequests float64 `json:"totalRequests"`
	ErrorRate     float64 `json:"errorRate"`
	P50Latency    float64 `json:"p50Latency"`
	P95Latency    float64 `json:"p95Latency"`
	P99Latency    float64 `json:"p99Latency"`
}

type cacheInfo struct {
	Hits               float64 `json:"hits"`
	Misses             float64 `json:"misses"`
	HitRatio           float64 `json:"hitRatio"`
	InvalidationErrors float64 `json:"invalidationErrors"`
}

type loginInfo struct {
	Successes float64 `json:"successes"`
	Failures  float64 `json:"failures"`
}

type rateLimitInfo struct {
	Rejections float64 `json:"rejections"`
}

type serverInfo struct {
	StartTime     float64 `json:"startTime"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

type dbInfo struct {
	TotalConns    float64 `json:"totalConns"`
	IdleConns     float64 `json:"idleConns"`
	AcquiredConns float64 `json:"acquiredConns"`
	MaxConns      float64 `json:"maxConns"`
}

// Handler returns an http.HandlerFunc that serves live metrics in JSON format.
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := m.Summarize()
		if err != nil {
			http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache, no-store")
		_ = json.NewEncoder(w).Encode(summary)
	}
}

// Summarize gathers the registry into a Summary.
func (m *Metrics) Summarize() (*Summary, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}

	fam := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		fam[f.GetName()] = f
	}

	requests := fam["taskboard_http_requests_total"]
	durations := fam["taskboard_http_request_duration_seconds"]
	lookups := fam["taskboard_cache_lookups_total"]
	hits := sumCounter(lookups, "result", "hit")
	misses := sumCounter(lookups, "result", "miss")
	var ratio float64
	if hits+misses > 0 {
		ratio = hits / (hits + misses)
	}
	start := gaugeValue(fam["taskboard_server_start_time_seconds"])

	return &Summary{
		HTTP: httpSummary{
			TotalRequests: sumCounter(requests, "", ""),
			ErrorRate:     errorRate(requests),
			P50Latency:    histogramPercentile(durations, 0.50),
			P95Latency:    histogramPercentile(durations, 0.95),
			P99Latency:    histogramPercentile(durations, 0.99),
		},
		Cache: cacheInfo{
			Hits:               hits,
			Misses:             misses,
			HitRatio:           ratio,
			InvalidationErrors: sumCounter(fam["taskboard_cache_invalidation_errors_total"], "", ""),
		},
		Auth: countersBy(fam["taskboard_auth_outcomes_total"], "outcome"),
		Logins: loginInfo{
			Successes: sumCounter(fam["taskboard_logins_total"], "result", "success"),
			Failures:  sumCounter(fam["taskboard_logins_total"], "result", "failure"),
		},
		RateLimit: rateLimitInfo{
			Rejections: sumCounter(fam["taskboard_ratelimit_rejections_total"], "", ""),
		},
		Mutations: countersBy(fam["taskboard_mutations_total"], "resource", "action"),
		DB: dbInfo{
			TotalConns:    gaugeValue(fam["taskboard_db_pool_total_conns"]),
			IdleConns:     gaugeValue(fam["taskboard_db_pool_idle_conns"]),
			AcquiredConns: gaugeValue(fam["taskboard_db_pool_acquired_conns"]),
			MaxConns:      gaugeValue(fam["taskboard_db_pool_max_conns"]),
		},
		Server: serverInfo{
			StartTime:     start,
			UptimeSeconds: float64(m.now().Unix()) - start,
		},
	}, nil
}

// --- Prometheus metric helpers ---

func hasLabel(m *dto.Metric, name, value string) bool {
	if name == "" {
		return true
	}
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// sumCounter adds up the counters in f, optionally only those carrying the
// given label value.
func sumCounter(f *dto.MetricFamily, labelName, value string) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, m := range f.GetMetric() {
		if hasLabel(m, labelName, value) && m.GetCounter() != nil {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

// countersBy groups counters by the values of labels, joined with ".".
func countersBy(f *dto.MetricFamily, labels ...string) map[string]float64 {
	out := make(map[string]float64)
	if f == nil {
		return out
	}
	for _, m := range f.GetMetric() {
		if m.GetCounter() == nil {
			continue
		}
		key := ""
		for i, l := range labels {
			if i > 0 {
				key += "."
			}
			key += labelValue(m, l)
		}
		out[key] += m.GetCounter().GetValue()
	}
	return out
}

func gaugeValue(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	ms := f.GetMetric()
	if len(ms) == 0 || ms[0].GetGauge() == nil {
		return 0
	}
	return ms[0].GetGauge().GetValue()
}

// errorRate is the share of requests answered with a 4xx or 5xx status.
func errorRate(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	var total, errors float64
	for _, m := range f.GetMetric() {
		if m.GetCounter() == nil {
			continue
		}
		v := m.GetCounter().GetValue()
		total += v
		if code := labelValue(m, "status_code"); len(code) > 0 && code[0] >= '4' {
			errors += v
		}
	}
	if total == 0 {
		return 0
	}
	return errors / total
}

// histogramPercentile computes a percentile from aggregated histogram buckets
// using linear interpolation.
func histogramPercentile(f *dto.MetricFamily, q float64) float64 {
	if f == nil {
		return 0
	}

	type bucket struct {
		upperBound      float64
		cumulativeCount uint64
	}
	var totalCount uint64
	bucketMap := make(map[float64]uint64)

	for _, m := range f.GetMetric() {
		h := m.GetHistogram()
		if h == nil {
			continue
		}
		totalCount += h.GetSampleCount()
		for _, b := range h.GetBucket() {
			bucketMap[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if totalCount == 0 {
		return 0
	}

	buckets := make([]bucket, 0, len(bucketMap))
	for ub, count := range bucketMap {
		buckets = append(buckets, bucket{upperBound: ub, cumulativeCount: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].upperBound < buckets[j].upperBound
	})

	rank := q * float64(totalCount)

	var prevBound float64
	var prevCount uint64
	for _, b := range buckets {
		if math.IsInf(b.upperBound, 1) {
			break
		}
		if float64(b.cumulativeCount) >= rank {
			bucketCount := b.cumulativeCount - prevCount
			if bucketCount == 0 {
				return b.upperBound
			}
			fraction := (rank - float64(prevCount)) / float64(bucketCount)
			return prevBound + fraction*(b.upperBound-prevBound)
		}
		prevBound = b.upperBound
		prevCount = b.cumulativeCount
	}

	// Everything landed in +Inf: report the last finite bound.
	for i := len(buckets) - 1; i >= 0; i-- {
		if !math.IsInf(buckets[i].upperBound, 1) {
			return buckets[i].upperBound
		}
	}
	return 0
}

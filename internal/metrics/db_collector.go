package metrics

import "github.com/prometheus/client_golang/prometheus"

// PoolStats is a point-in-time view of a connection pool.
type PoolStats struct {
	Total    int32
	Idle     int32
	Acquired int32
	Max      int32
}

// DBPoolStatFunc returns connection pool statistics.
type DBPoolStatFunc func() PoolStats

// dbPoolCollector reads pool stats on every scrape.
type dbPoolCollector struct {
	statFunc DBPoolStatFunc
	descs    [4]*prometheus.Desc
}

func poolDesc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc("taskboard_db_pool_"+name, help, nil, nil)
}

// NewDBPoolCollector creates a collector that exposes DB pool gauges.
func NewDBPoolCollector(statFunc DBPoolStatFunc) prometheus.Collector {
	return &dbPoolCollector{
		statFunc: statFunc,
		descs: [4]*prometheus.Desc{
			poolDesc("total_conns", "Total number of connections in the DB pool."),
			poolDesc("idle_conns", "Number of idle connections in the DB pool."),
			poolDesc("acquired_conns", "Number of acquired connections in the DB pool."),
			poolDesc("max_conns", "Maximum size of the DB pool."),
		},
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.statFunc()
	for i, v := range []int32{s.Total, s.Idle, s.Acquired, s.Max} {
		ch <- prometheus.MustNewConstMetric(c.descs[i], prometheus.GaugeValue, float64(v))
	}
}

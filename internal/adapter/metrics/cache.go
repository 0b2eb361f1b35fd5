package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the report cache.
type CacheMetrics struct {
	Hits   *prometheus.CounterVec
	Misses prometheus.Counter
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report_cache",
			Name:      "hits_total",
			Help:      "Total number of report cache hits, by layer.",
		}, []string{"layer"}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report_cache",
			Name:      "misses_total",
			Help:      "Total number of report cache misses that ran an analysis.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses)
	return m
}

func (m *CacheMetrics) CacheHit(layer string) { m.Hits.WithLabelValues(layer).Inc() }

func (m *CacheMetrics) CacheMiss() { m.Misses.Inc() }

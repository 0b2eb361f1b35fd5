package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

// UpstreamMetrics tracks Redis commands, circuit breakers and event sinks.
type UpstreamMetrics struct {
	RedisOpsTotal         *prometheus.CounterVec
	RedisOpDuration       *prometheus.HistogramVec
	RedisConnectionErrors prometheus.Counter
	CircuitBreakerState   *prometheus.GaugeVec
	CircuitBreakerChanges *prometheus.CounterVec
	EventPublishFailures  *prometheus.CounterVec
}

func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	m := &UpstreamMetrics{
		RedisOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operations_total",
			Help:      "Total number of Redis commands, by command and status.",
		}, []string{"operation", "status"}),
		RedisOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Duration of Redis commands in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"operation"}),
		RedisConnectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "connection_errors_total",
			Help:      "Total number of failed Redis dials.",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "circuit_breaker",
			Name:      "state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"component"}),
		CircuitBreakerChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "circuit_breaker",
			Name:      "state_changes_total",
			Help:      "Total number of circuit breaker transitions, by target state.",
		}, []string{"component", "state"}),
		EventPublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "publish_failures_total",
			Help:      "Total number of report events a sink failed to accept.",
		}, []string{"sink"}),
	}

	reg.MustRegister(m.RedisOpsTotal, m.RedisOpDuration, m.RedisConnectionErrors,
		m.CircuitBreakerState, m.CircuitBreakerChanges, m.EventPublishFailures)
	return m
}

func (m *UpstreamMetrics) ObserveRedisOp(operation, status string, d time.Duration) {
	m.RedisOpsTotal.WithLabelValues(operation, status).Inc()
	m.RedisOpDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *UpstreamMetrics) RedisConnectionError() { m.RedisConnectionErrors.Inc() }

func (m *UpstreamMetrics) BreakerStateChanged(component string, _, to gobreaker.State) {
	m.CircuitBreakerChanges.WithLabelValues(component, to.String()).Inc()
	m.CircuitBreakerState.WithLabelValues(component).Set(stateToFloat(to))
}

func (m *UpstreamMetrics) PublishFailed(sink string) {
	m.EventPublishFailures.WithLabelValues(sink).Inc()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

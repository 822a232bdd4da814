package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Haser0305/astraea/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	migratingPartitions prometheus.Gauge
	taskResults         *prometheus.CounterVec
	phaseDuration       *prometheus.HistogramVec

	waitPolls      *prometheus.CounterVec
	debounceResets prometheus.Counter
	waitOutcomes   *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "astraea" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "astraea"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.migratingPartitions = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "executor",
			Name:      "migrating_partitions",
			Help:      "Size of the migration set computed for the current plan.",
		})

		p.taskResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "executor",
			Name:      "task_results_total",
			Help:      "Migration task outcomes by kind and result.",
		}, []string{"kind", "success"})

		p.phaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "executor",
			Name:      "phase_duration_seconds",
			Help:      "Wall time of each phase barrier in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms .. ~100s
		}, []string{"kind"})

		p.waitPolls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "waiter",
			Name:      "polls_total",
			Help:      "Predicate evaluations by observed result.",
		}, []string{"observed"})

		p.debounceResets = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "waiter",
			Name:      "debounce_resets_total",
			Help:      "Stability-counter resets caused by false observations.",
		})

		p.waitOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "waiter",
			Name:      "outcomes_total",
			Help:      "Wait results (converged vs timeout).",
		}, []string{"converged"})

		p.reg.MustRegister(p.migratingPartitions)
		p.reg.MustRegister(p.taskResults)
		p.reg.MustRegister(p.phaseDuration)
		p.reg.MustRegister(p.waitPolls)
		p.reg.MustRegister(p.debounceResets)
		p.reg.MustRegister(p.waitOutcomes)
	})
}

// ExecutorMetrics implementation

// RecordMigratingPartitions sets the migration set gauge.
func (p *PrometheusCollector) RecordMigratingPartitions(count int) {
	p.ensureRegistered()
	p.migratingPartitions.Set(float64(count))
}

// RecordTaskResult counts one migration task outcome.
func (p *PrometheusCollector) RecordTaskResult(kind types.MigrationKind, success bool) {
	p.ensureRegistered()
	p.taskResults.WithLabelValues(kind.String(), strconv.FormatBool(success)).Inc()
}

// RecordPhaseDuration observes one phase barrier duration.
func (p *PrometheusCollector) RecordPhaseDuration(kind types.MigrationKind, seconds float64) {
	p.ensureRegistered()
	p.phaseDuration.WithLabelValues(kind.String()).Observe(seconds)
}

// WaiterMetrics implementation

// RecordWaitPoll counts one predicate evaluation.
func (p *PrometheusCollector) RecordWaitPoll(observed bool) {
	p.ensureRegistered()
	p.waitPolls.WithLabelValues(strconv.FormatBool(observed)).Inc()
}

// RecordDebounceReset counts a stability-counter reset.
func (p *PrometheusCollector) RecordDebounceReset() {
	p.ensureRegistered()
	p.debounceResets.Inc()
}

// RecordWaitOutcome counts one wait result.
func (p *PrometheusCollector) RecordWaitOutcome(converged bool) {
	p.ensureRegistered()
	p.waitOutcomes.WithLabelValues(strconv.FormatBool(converged)).Inc()
}

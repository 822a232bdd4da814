// Package metrics provides MetricsCollector implementations for the balancer
// execution core.
package metrics

import "github.com/Haser0305/astraea/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ExecutorMetrics implementation

// RecordMigratingPartitions discards the migration set size metric.
func (n *NopMetrics) RecordMigratingPartitions(_ /* count */ int) {
	// No-op
}

// RecordTaskResult discards the task outcome metric.
func (n *NopMetrics) RecordTaskResult(_ /* kind */ types.MigrationKind, _ /* success */ bool) {
	// No-op
}

// RecordPhaseDuration discards the phase duration metric.
func (n *NopMetrics) RecordPhaseDuration(_ /* kind */ types.MigrationKind, _ /* seconds */ float64) {
	// No-op
}

// WaiterMetrics implementation

// RecordWaitPoll discards the predicate evaluation metric.
func (n *NopMetrics) RecordWaitPoll(_ /* observed */ bool) {
	// No-op
}

// RecordDebounceReset discards the debounce reset metric.
func (n *NopMetrics) RecordDebounceReset() {
	// No-op
}

// RecordWaitOutcome discards the wait outcome metric.
func (n *NopMetrics) RecordWaitOutcome(_ /* converged */ bool) {
	// No-op
}

package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	ExecutorMetrics
	WaiterMetrics
}

// ExecutorMetrics defines metrics for plan execution.
type ExecutorMetrics interface {
	// RecordMigratingPartitions sets the size of the migration set computed by
	// the differ for the current plan (gauge metric).
	RecordMigratingPartitions(count int)

	// RecordTaskResult records the outcome of one migration task.
	//
	// Parameters:
	//   - kind: Task kind (replica_move, folder_move, leader_election)
	//   - success: true if the task completed without error
	RecordTaskResult(kind MigrationKind, success bool)

	// RecordPhaseDuration records the wall time of one phase barrier.
	//
	// Parameters:
	//   - kind: Phase kind
	//   - seconds: Time from first submission to barrier completion
	RecordPhaseDuration(kind MigrationKind, seconds float64)
}

// WaiterMetrics defines metrics for the convergence waiter.
type WaiterMetrics interface {
	// RecordWaitPoll records one predicate evaluation.
	//
	// Parameters:
	//   - observed: The predicate result (retriable faults count as false)
	RecordWaitPoll(observed bool)

	// RecordDebounceReset records a stability-counter reset caused by a false
	// observation during an active debounce countdown.
	RecordDebounceReset()

	// RecordWaitOutcome records the final result of a wait.
	//
	// Parameters:
	//   - converged: true on success, false on timeout
	RecordWaitOutcome(converged bool)
}

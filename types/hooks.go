package types

import "context"

// Hooks defines callbacks for plan execution lifecycle events.
//
// All hooks are optional. They run synchronously on the executor's
// orchestration goroutine between phases (never inside a task goroutine), so
// they observe consistent phase boundaries. Hook errors are logged and do not
// fail the plan.
//
// Best practices for hook implementation:
//   - Complete quickly (< 1 second recommended)
//   - Respect context cancellation
//   - Don't block on long I/O operations
type Hooks struct {
	// OnPhaseStart is called before the first task of a phase is submitted.
	// tasks is the number of tasks about to be submitted.
	OnPhaseStart func(ctx context.Context, kind MigrationKind, tasks int) error

	// OnPhaseComplete is called after the phase barrier joins, with the
	// aggregate error of the phase (nil if every task succeeded).
	OnPhaseComplete func(ctx context.Context, kind MigrationKind, err error) error

	// OnTaskFailed is called once per failed task, after the barrier joins.
	OnTaskFailed func(ctx context.Context, kind MigrationKind, tp TopicPartition, err error) error
}

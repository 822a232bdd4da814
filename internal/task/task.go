// Package task provides the completion handle for one in-flight
// administrative operation submitted during plan execution.
package task

import (
	"context"

	"github.com/Haser0305/astraea/types"
)

// Task tracks one submitted migration operation until its outcome is observed.
//
// A task is owned by the executor invocation that created it: the goroutine
// performing the operation calls Complete exactly once, and the phase barrier
// consumes the outcome through Await. Tasks are never shared across executor
// runs.
type Task struct {
	kind types.MigrationKind
	tp   types.TopicPartition

	done chan struct{}
	err  error
}

// New creates a pending task for the given operation kind and partition.
func New(kind types.MigrationKind, tp types.TopicPartition) *Task {
	return &Task{
		kind: kind,
		tp:   tp,
		done: make(chan struct{}),
	}
}

// Kind returns the operation kind of the task.
func (t *Task) Kind() types.MigrationKind { return t.kind }

// TopicPartition returns the partition the task operates on.
func (t *Task) TopicPartition() types.TopicPartition { return t.tp }

// Complete records the operation outcome and releases every waiter.
// Calling Complete more than once panics; an outcome is immutable.
func (t *Task) Complete(err error) {
	t.err = err
	close(t.done)
}

// Await blocks until the task completes or ctx is done.
//
// Returns:
//   - error: The task outcome, or ctx.Err() if the context wins
func (t *Task) Await(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed when the task completes.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the recorded outcome. Only valid after Done is closed.
func (t *Task) Err() error { return t.err }

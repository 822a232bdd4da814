package astraea

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Haser0305/astraea/internal/allocation"
	"github.com/Haser0305/astraea/internal/logger"
	"github.com/Haser0305/astraea/internal/metrics"
	"github.com/Haser0305/astraea/internal/task"
)

// Executor applies a target replica placement to the cluster by issuing the
// minimal set of migrations through the Admin facade.
//
// A plan runs in three strictly ordered phases, each a completion barrier:
//
//  1. Broker reassignment: every migrating partition's replica set moves to
//     its target brokers (membership only, storage directories untouched).
//  2. Folder reassignment: after a settle delay for metadata propagation, a
//     fresh fetch reveals which replicas still sit in the wrong directory;
//     only the difference is submitted.
//  3. Preferred leader election: the first broker of each migrating
//     partition's target list is promoted, provided it is in-sync.
//
// Within a phase, tasks run concurrently with unbounded fan-out; the Admin
// implementation owns connection and request limits. A phase always joins
// every task before the next begins. Task failures are collected, not
// propagated mid-phase: siblings run to completion and their effects stay
// applied. A phase ending with failures stops the plan at its barrier with an
// aggregate error.
//
// There is no rollback. A partially applied plan leaves the cluster in an
// intermediate but valid state; recovery is re-running the diff against
// current state and re-submitting.
//
// Thread Safety: an Executor is immutable after construction and safe for
// concurrent Execute calls; the per-invocation task state is never shared.
type Executor struct {
	cfg   Config
	admin Admin

	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
}

// NewExecutor creates an Executor over the given admin facade.
//
// Returns a concrete *Executor struct following the "accept interfaces,
// return structs" principle.
//
// Parameters:
//   - cfg: Timing configuration (zero fields filled with defaults)
//   - admin: Administrative control-plane facade
//   - opts: Optional configuration (hooks, metrics, logger)
//
// Returns:
//   - *Executor: Initialized executor instance
//   - error: Validation error if the configuration is invalid
//
// Example:
//
//	cfg := astraea.DefaultConfig()
//	exec, err := astraea.NewExecutor(&cfg, admin, astraea.WithLogger(log))
func NewExecutor(cfg *Config, admin Admin, opts ...Option) (*Executor, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if admin == nil {
		return nil, ErrAdminRequired
	}

	resolved := *cfg
	ApplyDefaults(&resolved)
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	options := executorOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = logger.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}

	return &Executor{
		cfg:     resolved,
		admin:   admin,
		hooks:   options.hooks,
		metrics: options.metrics,
		logger:  options.logger,
	}, nil
}

// Execute applies the target allocation and blocks until the plan completes
// or fails.
//
// Partitions whose current placement already satisfies the target are left
// alone; when nothing differs, Execute issues zero operations and returns
// immediately.
//
// Parameters:
//   - ctx: Context for cancellation; once an operation is submitted it runs
//     to completion or failure server-side regardless
//   - target: Desired cluster allocation, replica lists in preference order
//
// Returns:
//   - error: nil on success; ErrTargetRequired for an empty target; an
//     ErrMigrationFailed-wrapped aggregate when any task fails
func (e *Executor) Execute(ctx context.Context, target ClusterAllocation) error {
	if target.Len() == 0 {
		return ErrTargetRequired
	}

	current, err := e.fetchAllocation(ctx, target.Topics())
	if err != nil {
		return fmt.Errorf("fetch current allocation: %w", err)
	}

	migrating := allocation.FindNonFulfilled(current, target)
	e.metrics.RecordMigratingPartitions(len(migrating))
	if len(migrating) == 0 {
		e.logger.Info("allocation already fulfilled, nothing to migrate",
			"partitions", target.Len(), "fingerprint", target.Fingerprint())

		return nil
	}
	e.logger.Info("executing migration plan",
		"migrating", len(migrating),
		"current", current.Fingerprint(),
		"target", target.Fingerprint())

	goals := e.migrationGoals(target, migrating)

	if err := e.moveToBrokers(ctx, migrating, goals); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	// Let the cluster notice the replica lists just changed before diffing
	// folders against its metadata.
	if err := e.settle(ctx); err != nil {
		return err
	}

	if err := e.moveToFolders(ctx, migrating, goals); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	if err := e.electLeaders(ctx, migrating); err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationFailed, err)
	}

	e.logger.Info("migration plan applied", "migrating", len(migrating))

	return nil
}

// ExecuteAsync runs Execute in a background goroutine and reports the result
// on the returned channel (buffered, never blocks the plan).
//
// Parameters:
//   - ctx: Context for cancellation
//   - target: Desired cluster allocation
//
// Returns:
//   - <-chan error: Receives the Execute result exactly once
func (e *Executor) ExecuteAsync(ctx context.Context, target ClusterAllocation) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Execute(ctx, target)
	}()

	return errCh
}

// migrationGoals derives every migrating partition's broker/folder goal once,
// before any phase runs, so all three phases act on the same view of the
// target.
func (e *Executor) migrationGoals(target ClusterAllocation, migrating []TopicPartition) map[TopicPartition]allocation.MigrationTarget {
	goals := make(map[TopicPartition]allocation.MigrationTarget, len(migrating))
	for _, tp := range migrating {
		replicas, ok := target.Replicas(tp)
		if !ok {
			continue
		}
		goal := allocation.MigrationTargetOf(replicas)
		if goal.Duplicates > 0 {
			e.logger.Warn("target lists duplicate brokers, first occurrence wins",
				"partition", tp.String(), "duplicates", goal.Duplicates)
		}
		goals[tp] = goal
	}

	return goals
}

// moveToBrokers runs the broker reassignment phase.
func (e *Executor) moveToBrokers(ctx context.Context, migrating []TopicPartition, goals map[TopicPartition]allocation.MigrationTarget) error {
	items := make([]phaseItem, 0, len(migrating))
	for _, tp := range migrating {
		goal, ok := goals[tp]
		if !ok {
			continue
		}
		items = append(items, phaseItem{
			tp: tp,
			run: func(ctx context.Context) error {
				return e.admin.MoveToBrokers(ctx, map[TopicPartition][]NodeID{tp: goal.Brokers})
			},
		})
	}

	return e.runPhase(ctx, ReplicaMove, items)
}

// moveToFolders runs the folder reassignment phase. The current replica to
// folder mapping is re-fetched once for all migrating partitions (a single
// batched query) and only the missing (broker, folder) pairs are submitted.
func (e *Executor) moveToFolders(ctx context.Context, migrating []TopicPartition, goals map[TopicPartition]allocation.MigrationTarget) error {
	current, err := e.fetchAllocation(ctx, topicsOf(migrating))
	if err != nil {
		return fmt.Errorf("fetch allocation for folder diff: %w", err)
	}

	items := make([]phaseItem, 0, len(migrating))
	for _, tp := range migrating {
		goal, ok := goals[tp]
		if !ok {
			continue
		}
		moves := allocation.FolderMoves(current, goal, tp)
		if len(moves) == 0 {
			continue
		}
		items = append(items, phaseItem{
			tp: tp,
			run: func(ctx context.Context) error {
				return e.admin.MoveToFolders(ctx, moves)
			},
		})
	}

	return e.runPhase(ctx, FolderMove, items)
}

// electLeaders runs the preferred leader election phase.
func (e *Executor) electLeaders(ctx context.Context, migrating []TopicPartition) error {
	items := make([]phaseItem, 0, len(migrating))
	for _, tp := range migrating {
		items = append(items, phaseItem{
			tp: tp,
			run: func(ctx context.Context) error {
				return e.admin.PreferredLeaderElection(ctx, tp)
			},
		})
	}

	return e.runPhase(ctx, LeaderElection, items)
}

// phaseItem is one submission of a phase: the partition and the operation to
// perform for it.
type phaseItem struct {
	tp  TopicPartition
	run func(ctx context.Context) error
}

// runPhase submits every item concurrently and joins all of them before
// returning the aggregate of their failures. The barrier never aborts early:
// a failed task does not cancel its siblings.
func (e *Executor) runPhase(ctx context.Context, kind MigrationKind, items []phaseItem) error {
	if len(items) == 0 {
		e.logger.Debug("phase has no work", "kind", kind.String())

		return nil
	}

	start := time.Now()
	e.runHook(ctx, kind, func(h *Hooks) func(context.Context) error {
		if h.OnPhaseStart == nil {
			return nil
		}

		return func(ctx context.Context) error { return h.OnPhaseStart(ctx, kind, len(items)) }
	})
	e.logger.Debug("phase start", "kind", kind.String(), "tasks", len(items))

	tasks := make([]*task.Task, 0, len(items))
	for _, item := range items {
		t := task.New(kind, item.tp)
		tasks = append(tasks, t)
		go func(item phaseItem, t *task.Task) {
			opCtx := ctx
			if e.cfg.OperationTimeout > 0 {
				var cancel context.CancelFunc
				opCtx, cancel = context.WithTimeout(ctx, e.cfg.OperationTimeout)
				defer cancel()
			}
			t.Complete(item.run(opCtx))
		}(item, t)
	}

	// Barrier: every task completes, successfully or not, before the phase
	// ends.
	var errs []error
	for _, t := range tasks {
		<-t.Done()
		err := t.Err()
		e.metrics.RecordTaskResult(kind, err == nil)
		if err == nil {
			continue
		}
		errs = append(errs, fmt.Errorf("%s %s: %w", kind, t.TopicPartition(), err))
		e.logger.Error("migration task failed",
			"kind", kind.String(), "partition", t.TopicPartition().String(), "err", err)
		tp := t.TopicPartition()
		e.runHook(ctx, kind, func(h *Hooks) func(context.Context) error {
			if h.OnTaskFailed == nil {
				return nil
			}

			return func(ctx context.Context) error { return h.OnTaskFailed(ctx, kind, tp, err) }
		})
	}

	aggregate := errors.Join(errs...)
	e.metrics.RecordPhaseDuration(kind, time.Since(start).Seconds())
	e.runHook(ctx, kind, func(h *Hooks) func(context.Context) error {
		if h.OnPhaseComplete == nil {
			return nil
		}

		return func(ctx context.Context) error { return h.OnPhaseComplete(ctx, kind, aggregate) }
	})
	e.logger.Debug("phase complete",
		"kind", kind.String(), "tasks", len(items), "failed", len(errs),
		"elapsed", time.Since(start).String())

	return aggregate
}

// settle pauses between the broker-move barrier and the folder diff so the
// cluster's metadata catches up with the reassignment.
func (e *Executor) settle(ctx context.Context) error {
	if e.cfg.SettleDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(e.cfg.SettleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetchAllocation queries the current placement, bounded by FetchTimeout.
func (e *Executor) fetchAllocation(ctx context.Context, topics []string) (ClusterAllocation, error) {
	if e.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.FetchTimeout)
		defer cancel()
	}

	return e.admin.ClusterAllocation(ctx, topics)
}

// runHook invokes one optional hook and logs (never propagates) its error.
func (e *Executor) runHook(ctx context.Context, kind MigrationKind, pick func(*Hooks) func(context.Context) error) {
	if e.hooks == nil {
		return
	}
	hook := pick(e.hooks)
	if hook == nil {
		return
	}
	if err := hook(ctx); err != nil {
		e.logger.Warn("hook failed", "kind", kind.String(), "err", err)
	}
}

// topicsOf returns the distinct topics of the given partitions, in first-seen
// order.
func topicsOf(tps []TopicPartition) []string {
	seen := make(map[string]struct{}, len(tps))
	topics := make([]string, 0, len(tps))
	for _, tp := range tps {
		if _, ok := seen[tp.Topic]; ok {
			continue
		}
		seen[tp.Topic] = struct{}{}
		topics = append(topics, tp.Topic)
	}

	return topics
}

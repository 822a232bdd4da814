package astraea

import (
	"context"
	"time"

	"github.com/Haser0305/astraea/internal/allocation"
	"github.com/Haser0305/astraea/internal/metrics"
	"github.com/Haser0305/astraea/types"
)

// Predicate is an asynchronous boolean condition over server-side state.
//
// A retriable error (see Retriable) counts as a false observation; any other
// error aborts the wait.
type Predicate func(ctx context.Context) (bool, error)

// Waiter polls a predicate until it holds stably or a timeout elapses.
//
// "Stably" means debounce+1 consecutive true observations: control-plane
// reads are eventually consistent and a single true may come from a stale
// broker, so any false observation resets the stability counter.
//
// The zero value is not usable; construct with NewWaiter.
type Waiter struct {
	interval time.Duration
	metrics  MetricsCollector
}

// NewWaiter creates a Waiter polling at the given interval.
//
// Parameters:
//   - interval: Sleep between predicate evaluations (<= 0 uses the default 300ms)
//   - opts: Optional configuration (metrics)
//
// Returns:
//   - *Waiter: Reusable waiter; safe for concurrent Wait calls
func NewWaiter(interval time.Duration, opts ...Option) *Waiter {
	if interval <= 0 {
		interval = DefaultConfig().PollInterval
	}

	options := executorOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}

	return &Waiter{interval: interval, metrics: options.metrics}
}

// Wait evaluates the predicate until it is true on debounce+1 consecutive
// observations or the timeout elapses.
//
// The loop is iterative, never recursive: remaining time and remaining
// debounce live in locals, so an arbitrarily long wait cannot grow the stack.
// Elapsed wall time (predicate evaluation plus the poll sleep) is charged
// against the timeout each iteration.
//
// A timeout is not an error: the wait resolves to false. Retriable predicate
// errors count as false observations; fatal errors propagate immediately, as
// does ctx cancellation.
//
// Parameters:
//   - ctx: Context for cancellation
//   - predicate: Condition over freshly fetched server state
//   - timeout: Wall-clock bound for the whole wait
//   - debounce: Number of confirmations required beyond the first true
//
// Returns:
//   - bool: true iff the predicate held stably before the timeout
//   - error: Fatal predicate error, ctx error, or ErrInvalidDebounce
func (w *Waiter) Wait(ctx context.Context, predicate Predicate, timeout time.Duration, debounce int) (bool, error) {
	if debounce < 0 {
		return false, ErrInvalidDebounce
	}

	remainingTime := timeout
	remainingDebounce := debounce

	for {
		if remainingTime <= 0 {
			w.metrics.RecordWaitOutcome(false)

			return false, nil
		}

		start := time.Now()

		match, err := predicate(ctx)
		if err != nil {
			if !types.IsRetriable(err) {
				return false, err
			}
			// Stale metadata and friends: observed as "not yet".
			match = false
		}
		w.metrics.RecordWaitPoll(match)

		if match && remainingDebounce <= 0 {
			w.metrics.RecordWaitOutcome(true)

			return true, nil
		}

		// Take a break before the retry or the next confirmation; hot-polling
		// only hammers a control plane that has not caught up yet.
		select {
		case <-time.After(w.interval):
		case <-ctx.Done():
			return false, ctx.Err()
		}

		remainingTime -= time.Since(start)

		if match {
			remainingDebounce--
		} else {
			if remainingDebounce != debounce {
				w.metrics.RecordDebounceReset()
			}
			remainingDebounce = debounce
		}
	}
}

// Wait polls the predicate with a default 300ms interval. See Waiter.Wait.
func Wait(ctx context.Context, predicate Predicate, timeout time.Duration, debounce int) (bool, error) {
	return NewWaiter(0).Wait(ctx, predicate, timeout, debounce)
}

// Fulfilled builds a convergence predicate for the target allocation: true
// when a fresh fetch of the target's topics shows no non-fulfilled partition
// and every target replica is reported in-sync. Retriable fetch errors are
// wrapped for the waiter to absorb.
//
// Parameters:
//   - admin: Control-plane facade to fetch current state from
//   - target: Desired cluster allocation
//
// Returns:
//   - Predicate: Suitable for Wait / Waiter.Wait
func Fulfilled(admin Admin, target ClusterAllocation) Predicate {
	topics := target.Topics()

	return func(ctx context.Context) (bool, error) {
		current, err := admin.ClusterAllocation(ctx, topics)
		if err != nil {
			return false, err
		}
		if len(allocation.FindNonFulfilled(current, target)) > 0 {
			return false, nil
		}

		// Membership converged; migration is only done once the moved
		// replicas caught up again.
		for _, tp := range target.Partitions() {
			replicas, ok := current.Replicas(tp)
			if !ok {
				return false, nil
			}
			for _, r := range replicas {
				if !r.InSync {
					return false, nil
				}
			}
		}

		return true, nil
	}
}

// WaitConverged waits until the cluster's observed allocation satisfies the
// target, stably across debounce+1 observations.
//
// Shorthand for Wait(ctx, Fulfilled(admin, target), timeout, debounce).
func WaitConverged(ctx context.Context, admin Admin, target ClusterAllocation, timeout time.Duration, debounce int) (bool, error) {
	return Wait(ctx, Fulfilled(admin, target), timeout, debounce)
}

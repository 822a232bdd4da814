package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the balancer execution core.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).

// Executor errors - Public API errors returned by the Executor component.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAdminRequired is returned when the admin facade is nil.
	ErrAdminRequired = errors.New("admin facade is required")

	// ErrTargetRequired is returned when the target allocation is empty.
	ErrTargetRequired = errors.New("target allocation is required")

	// ErrMigrationFailed is returned when one or more migration tasks fail.
	// The individual task failures are joined into the returned error chain.
	ErrMigrationFailed = errors.New("migration failed")

	// ErrUnknownPartition is returned when a partition named by the target
	// allocation does not exist on the cluster.
	ErrUnknownPartition = errors.New("unknown topic partition")

	// ErrReplicaCountReduced is returned when a move target requests fewer
	// replicas than the partition currently has. Shrinking a replica set
	// through a move is illegal on the control plane.
	ErrReplicaCountReduced = errors.New("replica count reduction is not allowed")
)

// Waiter errors - returned by the convergence waiter.
var (
	// ErrInvalidDebounce is returned when a negative debounce count is given.
	ErrInvalidDebounce = errors.New("debounce must be non-negative")
)

// ErrRetriable marks transient control-plane conditions such as stale or
// not-yet-propagated cluster metadata. The convergence waiter treats a
// predicate failure carrying this marker as a "not yet converged" observation
// rather than a fatal stop.
var ErrRetriable = errors.New("retriable")

// Retriable wraps err with the retriable marker.
//
// Admin implementations wrap transient failures so the core can distinguish
// them from fatal ones:
//
//	return types.Retriable(fmt.Errorf("stale metadata for %s: %w", tp, err))
//
// Parameters:
//   - err: The underlying error (nil returns nil)
//
// Returns:
//   - error: err wrapped so that IsRetriable reports true
func Retriable(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrRetriable, err)
}

// IsRetriable reports whether err carries the retriable marker anywhere in its
// chain.
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error is transient and worth re-observing
func IsRetriable(err error) bool {
	return errors.Is(err, ErrRetriable)
}

package astraea

import "github.com/Haser0305/astraea/types"

// Sentinel errors returned by the Executor and the convergence waiter.
// Aliased from the types package so internal packages and users check the
// same values.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrAdminRequired is returned when the admin facade is nil.
	ErrAdminRequired = types.ErrAdminRequired

	// ErrTargetRequired is returned when the target allocation is empty.
	ErrTargetRequired = types.ErrTargetRequired

	// ErrMigrationFailed is returned when one or more migration tasks fail.
	ErrMigrationFailed = types.ErrMigrationFailed

	// ErrUnknownPartition is returned when the target names a partition the
	// cluster does not have.
	ErrUnknownPartition = types.ErrUnknownPartition

	// ErrReplicaCountReduced is returned when a move target shrinks a
	// partition's replica set, which the control plane disallows.
	ErrReplicaCountReduced = types.ErrReplicaCountReduced

	// ErrInvalidDebounce is returned when Wait is given a negative debounce.
	ErrInvalidDebounce = types.ErrInvalidDebounce
)

// Retriable wraps err as a transient control-plane condition.
// See types.Retriable.
func Retriable(err error) error { return types.Retriable(err) }

// IsRetriable reports whether err is transient. See types.IsRetriable.
func IsRetriable(err error) bool { return types.IsRetriable(err) }

package types

import "context"

// Admin is the administrative control-plane capability consumed by the
// execution core. The core never implements it; implementations wrap a real
// cluster client (or, for integration tests and simulation, the
// admin/natsadmin adapter).
//
// All methods block until the server side acknowledges the operation or the
// context is done. The executor provides concurrency by invoking them from
// multiple goroutines within a phase, so implementations must be safe for
// concurrent use and are responsible for their own connection and request
// limits.
//
// Error contract: transient conditions caused by stale or not-yet-visible
// cluster metadata must be wrapped with Retriable so the convergence waiter
// can absorb them. Everything else (malformed requests, authorization
// failures, unknown topics) is fatal and propagates unchanged.
type Admin interface {
	// ClusterAllocation fetches the current replica placement for the given
	// topics. Topics without any partition are simply absent from the result.
	ClusterAllocation(ctx context.Context, topics []string) (ClusterAllocation, error)

	// MoveToBrokers reassigns each partition's replica set to the given
	// ordered broker list. The first broker is the preferred leader. Requesting
	// fewer replicas than a partition currently has is illegal and fails with
	// ErrReplicaCountReduced.
	MoveToBrokers(ctx context.Context, assignments map[TopicPartition][]NodeID) error

	// MoveToFolders relocates each replica to the given storage directory on
	// its current broker.
	MoveToFolders(ctx context.Context, assignments map[TopicPartitionReplica]string) error

	// PreferredLeaderElection promotes the first replica of the partition's
	// replica list to leader. The preferred replica must be in-sync; otherwise
	// the control plane rejects or ignores the request. The executor does not
	// retry a rejected election, that is the caller's job via the waiter.
	PreferredLeaderElection(ctx context.Context, tp TopicPartition) error
}

package types

// MigrationKind names the kind of administrative operation a migration task
// performs. The executor runs one phase per kind, in declaration order.
type MigrationKind int

const (
	// ReplicaMove reassigns a partition's replica set to an ordered list of
	// brokers. Membership changes happen here; storage directories do not.
	ReplicaMove MigrationKind = iota

	// FolderMove relocates a replica to a specific storage directory on the
	// broker that already hosts it.
	FolderMove

	// LeaderElection promotes the preferred (first-listed) replica to leader,
	// provided it is in-sync.
	LeaderElection
)

// String returns the lowercase phase name used in logs and metric labels.
func (k MigrationKind) String() string {
	switch k {
	case ReplicaMove:
		return "replica_move"
	case FolderMove:
		return "folder_move"
	case LeaderElection:
		return "leader_election"
	default:
		return "unknown"
	}
}

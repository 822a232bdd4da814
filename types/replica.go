package types

// Replica describes where one copy of a partition lives and what role it plays.
//
// Replicas are value types; a ClusterAllocation holds them in preference order
// with the preferred leader conventionally first.
type Replica struct {
	// Broker is the node hosting this replica.
	Broker NodeID `json:"broker"`

	// Folder is the storage directory holding the replica's log segments.
	Folder string `json:"folder"`

	// PreferredLeader marks the replica that should lead under normal conditions.
	// Exactly one replica of a partition should carry this flag.
	PreferredLeader bool `json:"preferredLeader"`

	// InSync reports whether the replica is caught up closely enough with the
	// leader to be eligible for promotion.
	InSync bool `json:"inSync"`
}

package astraea

import "github.com/Haser0305/astraea/types"

// Re-export types from the internal types package.
//
// This file provides a stable, backward-compatible public API for the library's
// core types and interfaces. It uses type aliases to re-export definitions
// from the `types` subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal packages
// to depend on `types` without depending on the root `astraea` package, while
// still providing a convenient `astraea.TopicPartition`, `astraea.Admin`, etc.
// for users.
type (
	NodeID                = types.NodeID
	TopicPartition        = types.TopicPartition
	TopicPartitionReplica = types.TopicPartitionReplica
	Replica               = types.Replica
	ClusterAllocation     = types.ClusterAllocation
	MigrationKind         = types.MigrationKind
)

// Re-export interfaces from the internal types package for convenience.
type (
	Admin            = types.Admin
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	Hooks            = types.Hooks
)

// Re-export MigrationKind constants from the internal types package.
const (
	ReplicaMove    = types.ReplicaMove
	FolderMove     = types.FolderMove
	LeaderElection = types.LeaderElection
)

// NewClusterAllocation builds an immutable allocation snapshot.
// See types.NewClusterAllocation.
func NewClusterAllocation(placements map[TopicPartition][]Replica) ClusterAllocation {
	return types.NewClusterAllocation(placements)
}

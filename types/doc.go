// Package types contains the shared value types and contracts of the balancer
// execution core: the placement model (TopicPartition, Replica,
// ClusterAllocation), the Admin control-plane facade, migration kinds, and the
// Logger/MetricsCollector/Hooks extension points.
//
// Internal packages depend on types without importing the root astraea
// package, which re-exports these definitions through type aliases for
// convenience.
package types

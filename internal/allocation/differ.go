// Package allocation computes the difference between two cluster allocation
// snapshots: which partitions must migrate, and what each migration's concrete
// broker/folder target looks like.
package allocation

import (
	"sort"

	"github.com/Haser0305/astraea/types"
)

// FindNonFulfilled returns every partition whose current placement does not
// satisfy the target.
//
// The comparison is set equality over (broker, folder) pairs; replica order,
// leader flags and in-sync state are ignored, since leader preference is
// carried inside the move request itself and realized by leader election.
// Partitions present only in target are included; they fail later at execution
// time if the partition genuinely does not exist.
//
// The function is pure and deterministic: identical inputs always yield the
// same partitions in sorted order.
//
// Parameters:
//   - current: Observed cluster allocation
//   - target: Desired cluster allocation
//
// Returns:
//   - []types.TopicPartition: Partitions requiring migration, sorted
func FindNonFulfilled(current, target types.ClusterAllocation) []types.TopicPartition {
	var out []types.TopicPartition
	for _, tp := range target.Partitions() {
		targetReplicas, _ := target.Replicas(tp)
		currentReplicas, ok := current.Replicas(tp)
		if !ok || !samePlacementSet(currentReplicas, targetReplicas) {
			out = append(out, tp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })

	return out
}

// samePlacementSet reports whether two replica lists cover the same
// (broker, folder) pairs, ignoring order.
func samePlacementSet(a, b []types.Replica) bool {
	if len(a) != len(b) {
		return false
	}
	type placement struct {
		broker types.NodeID
		folder string
	}
	set := make(map[placement]struct{}, len(a))
	for _, r := range a {
		set[placement{r.Broker, r.Folder}] = struct{}{}
	}
	for _, r := range b {
		if _, ok := set[placement{r.Broker, r.Folder}]; !ok {
			return false
		}
	}

	return true
}

// MigrationTarget is the concrete goal of one partition's migration: the
// ordered brokers that should host the partition, with the preferred leader
// first, and the folder each broker should store the replica in.
type MigrationTarget struct {
	// Brokers is the desired replica set in preference order.
	Brokers []types.NodeID

	// Folders maps each broker in Brokers to its desired storage directory.
	Folders map[types.NodeID]string

	// Duplicates counts replicas dropped because their broker already appeared
	// earlier in the target list. Non-zero values signal a data-consistency
	// problem in the target, worth a warning but never fatal.
	Duplicates int
}

// MigrationTargetOf derives the migration target from a partition's desired
// replica list: a stable sort brings preferred-leader replicas to the front
// (ties keep original order), then the list collapses to an ordered broker set
// with a folder per broker. A broker repeated later in the list loses to its
// first occurrence.
//
// ClusterAllocation already collapses duplicate brokers at construction, so a
// non-zero Duplicates count only appears when callers pass a raw replica list
// from an inconsistent source.
//
// Parameters:
//   - replicas: Desired replica list for one partition (not mutated)
//
// Returns:
//   - MigrationTarget: Ordered broker/folder goal
func MigrationTargetOf(replicas []types.Replica) MigrationTarget {
	replicas = append([]types.Replica(nil), replicas...)
	sort.SliceStable(replicas, func(i, j int) bool {
		return replicas[i].PreferredLeader && !replicas[j].PreferredLeader
	})

	mt := MigrationTarget{
		Brokers: make([]types.NodeID, 0, len(replicas)),
		Folders: make(map[types.NodeID]string, len(replicas)),
	}
	for _, r := range replicas {
		if _, dup := mt.Folders[r.Broker]; dup {
			mt.Duplicates++
			continue
		}
		mt.Brokers = append(mt.Brokers, r.Broker)
		mt.Folders[r.Broker] = r.Folder
	}

	return mt
}

// FolderMoves returns the folder reassignments still missing on the cluster
// for tp: every (broker, folder) pair the migration target expects that the
// current allocation does not yet report. Replicas already on the right
// broker and folder are untouched.
//
// Parameters:
//   - current: Freshly fetched cluster allocation (post broker-move)
//   - mt: Migration target derived from the desired allocation
//   - tp: Partition under migration
//
// Returns:
//   - map[types.TopicPartitionReplica]string: Replica to desired folder
func FolderMoves(current types.ClusterAllocation, mt MigrationTarget, tp types.TopicPartition) map[types.TopicPartitionReplica]string {
	reported := make(map[types.NodeID]string)
	if replicas, ok := current.Replicas(tp); ok {
		for _, r := range replicas {
			reported[r.Broker] = r.Folder
		}
	}

	moves := make(map[types.TopicPartitionReplica]string)
	for _, broker := range mt.Brokers {
		want := mt.Folders[broker]
		if got, ok := reported[broker]; ok && got == want {
			continue
		}
		moves[tp.Replica(broker)] = want
	}

	return moves
}

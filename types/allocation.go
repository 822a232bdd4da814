package types

import (
	"encoding/binary"
	"sort"

	"github.com/zeebo/xxh3"
)

// ClusterAllocation is an immutable snapshot of replica placement: which
// replicas, on which brokers and folders, back which partitions.
//
// Two snapshots exist side by side during a migration: the observed "current"
// allocation and the desired "target" allocation. An allocation is never
// mutated in place; a fresh snapshot replaces a stale one.
//
// Replica order encodes preference, with the preferred leader first. The
// constructor drops later replicas of a partition that repeat a broker already
// seen, so a snapshot never places two replicas of one partition on the same
// node.
type ClusterAllocation struct {
	placements map[TopicPartition][]Replica
}

// NewClusterAllocation builds an immutable allocation snapshot from the given
// placement map.
//
// The input map and its replica slices are copied; callers may keep mutating
// their own copies freely. Duplicate brokers within a partition's replica list
// are collapsed, first occurrence wins.
//
// Parameters:
//   - placements: Partition to ordered replica list, preferred leader first
//
// Returns:
//   - ClusterAllocation: Immutable snapshot of the given placement
func NewClusterAllocation(placements map[TopicPartition][]Replica) ClusterAllocation {
	copied := make(map[TopicPartition][]Replica, len(placements))
	for tp, replicas := range placements {
		seen := make(map[NodeID]struct{}, len(replicas))
		kept := make([]Replica, 0, len(replicas))
		for _, r := range replicas {
			if _, dup := seen[r.Broker]; dup {
				continue
			}
			seen[r.Broker] = struct{}{}
			kept = append(kept, r)
		}
		copied[tp] = kept
	}

	return ClusterAllocation{placements: copied}
}

// Partitions returns every partition in the snapshot, sorted for deterministic
// iteration.
func (a ClusterAllocation) Partitions() []TopicPartition {
	tps := make([]TopicPartition, 0, len(a.placements))
	for tp := range a.placements {
		tps = append(tps, tp)
	}
	sort.Slice(tps, func(i, j int) bool { return tps[i].Compare(tps[j]) < 0 })

	return tps
}

// Topics returns the distinct topic names in the snapshot, sorted.
func (a ClusterAllocation) Topics() []string {
	set := make(map[string]struct{})
	for tp := range a.placements {
		set[tp.Topic] = struct{}{}
	}
	topics := make([]string, 0, len(set))
	for topic := range set {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	return topics
}

// Replicas returns a copy of the ordered replica list for the given partition.
//
// Returns:
//   - []Replica: Ordered replicas, nil if the partition is absent
//   - bool: true if the partition exists in the snapshot
func (a ClusterAllocation) Replicas(tp TopicPartition) ([]Replica, bool) {
	replicas, ok := a.placements[tp]
	if !ok {
		return nil, false
	}
	out := make([]Replica, len(replicas))
	copy(out, replicas)

	return out, true
}

// Len returns the number of partitions in the snapshot.
func (a ClusterAllocation) Len() int {
	return len(a.placements)
}

// Fingerprint returns a 64-bit xxh3 hash over a canonical ordering of the
// snapshot. Two snapshots with identical placement (including replica order
// and flags) share a fingerprint, which makes allocation changes cheap to spot
// in logs without dumping full placement maps.
func (a ClusterAllocation) Fingerprint() uint64 {
	var h uint64
	var buf [10]byte
	for _, tp := range a.Partitions() {
		h = xxh3.HashStringSeed(tp.Topic, h)
		binary.LittleEndian.PutUint64(buf[:8], uint64(tp.Partition)) //nolint:gosec // index, not data
		h = xxh3.HashSeed(buf[:8], h)
		for _, r := range a.placements[tp] {
			binary.LittleEndian.PutUint64(buf[:8], uint64(r.Broker)) //nolint:gosec // id, not data
			buf[8] = boolByte(r.PreferredLeader)
			buf[9] = boolByte(r.InSync)
			h = xxh3.HashSeed(buf[:], h)
			h = xxh3.HashStringSeed(r.Folder, h)
		}
	}

	return h
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}

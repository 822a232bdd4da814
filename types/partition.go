package types

import (
	"fmt"
	"strings"
)

// NodeID identifies a broker node in the cluster.
type NodeID int

// TopicPartition identifies one partition of a topic.
//
// It is a value type with structural equality, suitable as a map key.
type TopicPartition struct {
	// Topic is the topic name.
	Topic string `json:"topic"`

	// Partition is the partition index within the topic.
	Partition int `json:"partition"`
}

// String returns the canonical "topic-partition" form, e.g. "orders-3".
//
// Returns:
//   - string: Dash-joined topic and partition index
func (tp TopicPartition) String() string {
	return fmt.Sprintf("%s-%d", tp.Topic, tp.Partition)
}

// Compare orders partitions by topic name, then by partition index.
//
// Ordering rules:
//   - Topics compare using string order
//   - Equal topics compare by partition index
//   - Returns 0 when both fields are identical
//
// Returns:
//   - int: -1 if tp < other, 0 if equal, +1 if tp > other
func (tp TopicPartition) Compare(other TopicPartition) int {
	if c := strings.Compare(tp.Topic, other.Topic); c != 0 {
		return c
	}
	switch {
	case tp.Partition < other.Partition:
		return -1
	case tp.Partition > other.Partition:
		return 1
	default:
		return 0
	}
}

// Replica returns the replica identity of this partition on the given broker.
func (tp TopicPartition) Replica(broker NodeID) TopicPartitionReplica {
	return TopicPartitionReplica{Topic: tp.Topic, Partition: tp.Partition, Broker: broker}
}

// TopicPartitionReplica identifies one replica of a partition on a specific broker.
//
// It is the subject of a folder move: the replica already lives on Broker and
// only its storage directory changes.
type TopicPartitionReplica struct {
	// Topic is the topic name.
	Topic string `json:"topic"`

	// Partition is the partition index within the topic.
	Partition int `json:"partition"`

	// Broker is the node hosting the replica.
	Broker NodeID `json:"broker"`
}

// TopicPartition returns the partition identity without the broker.
func (tpr TopicPartitionReplica) TopicPartition() TopicPartition {
	return TopicPartition{Topic: tpr.Topic, Partition: tpr.Partition}
}

// String returns the canonical "topic-partition-broker" form, e.g. "orders-3-1".
func (tpr TopicPartitionReplica) String() string {
	return fmt.Sprintf("%s-%d-%d", tpr.Topic, tpr.Partition, tpr.Broker)
}

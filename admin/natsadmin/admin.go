package natsadmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/Haser0305/astraea/internal/kvutil"
	"github.com/Haser0305/astraea/internal/logger"
	"github.com/Haser0305/astraea/internal/natsutil"
	"github.com/Haser0305/astraea/types"
)

// DefaultBucket is the KV bucket name used when none is configured.
const DefaultBucket = "astraea-placements"

// writeAttempts bounds the optimistic read-modify-write retry loop.
const writeAttempts = 5

// Admin is a types.Admin backed by a JetStream KV bucket.
//
// Safe for concurrent use: every mutation is an optimistic compare-and-swap
// on the partition's KV entry revision.
type Admin struct {
	kv      jetstream.KeyValue
	logger  types.Logger
	pending *xsync.Counter
}

// Compile-time assertion that Admin implements types.Admin.
var _ types.Admin = (*Admin)(nil)

// placementRecord is the stored value for one partition.
type placementRecord struct {
	Replicas  []types.Replica `json:"replicas"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Open connects to JetStream and ensures the placement bucket exists.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - nc: Established NATS connection
//   - opts: Optional configuration (bucket name, storage, replicas, logger)
//
// Returns:
//   - *Admin: Ready-to-use admin facade
//   - error: JetStream or bucket creation error
func Open(ctx context.Context, nc *nats.Conn, opts ...Option) (*Admin, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      options.bucket,
		Description: "Astraea partition placement records",
		Storage:     options.storage,
		Replicas:    options.replicas,
		History:     1,
	}, 3)
	if err != nil {
		return nil, err
	}

	return New(kv, opts...), nil
}

// New wraps an existing KV bucket as an Admin.
//
// Useful when the caller manages bucket lifecycle itself, e.g. in tests.
//
// Parameters:
//   - kv: KV bucket holding placement records
//   - opts: Optional configuration (logger)
//
// Returns:
//   - *Admin: Ready-to-use admin facade
func New(kv jetstream.KeyValue, opts ...Option) *Admin {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = logger.NewNop()
	}

	return &Admin{
		kv:      kv,
		logger:  options.logger,
		pending: xsync.NewCounter(),
	}
}

// PendingOperations returns the number of control-plane operations currently
// in flight on this admin, across all goroutines.
//
// Returns:
//   - int64: In-flight operation count
func (a *Admin) PendingOperations() int64 {
	return a.pending.Value()
}

// ClusterAllocation fetches the current placement of the given topics.
//
// An empty topics slice fetches the whole bucket. Keys deleted between
// listing and reading are skipped.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - topics: Topics to fetch (empty for all)
//
// Returns:
//   - types.ClusterAllocation: Immutable snapshot of current placement
//   - error: Retriable on transient NATS failures
func (a *Admin) ClusterAllocation(ctx context.Context, topics []string) (types.ClusterAllocation, error) {
	a.pending.Inc()
	defer a.pending.Dec()

	keys, err := a.listKeys(ctx, topics)
	if err != nil {
		return types.ClusterAllocation{}, a.classify(err)
	}

	placements := make(map[types.TopicPartition][]types.Replica, len(keys))
	for _, key := range keys {
		entry, err := a.kv.Get(ctx, key)
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return types.ClusterAllocation{}, a.classify(fmt.Errorf("failed to read placement %q: %w", key, err))
		}

		tp, err := parseKey(key)
		if err != nil {
			return types.ClusterAllocation{}, err
		}

		var record placementRecord
		if err := json.Unmarshal(entry.Value(), &record); err != nil {
			return types.ClusterAllocation{}, fmt.Errorf("corrupt placement record %q: %w", key, err)
		}

		placements[tp] = record.Replicas
	}

	return types.NewClusterAllocation(placements), nil
}

// MoveToBrokers reassigns each partition to the given broker lists.
//
// Brokers already holding a replica keep their folder and sync status; newly
// added brokers start with an unset folder and out-of-sync. The first broker
// in each list becomes the preferred leader. Partitions unknown to the bucket
// are created.
//
// Shrinking a partition's replica set is rejected with ErrReplicaCountReduced:
// the executor only ever grows or keeps replica counts, and a reduction here
// would silently drop data copies.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - assignments: Target broker list per partition
//
// Returns:
//   - error: ErrReplicaCountReduced, retriable NATS error, or write conflict
func (a *Admin) MoveToBrokers(ctx context.Context, assignments map[types.TopicPartition][]types.NodeID) error {
	a.pending.Inc()
	defer a.pending.Dec()

	for tp, brokers := range assignments {
		if len(brokers) == 0 {
			return fmt.Errorf("%w: empty broker list for %s", types.ErrReplicaCountReduced, tp)
		}

		err := a.mutate(ctx, tp, true, func(current []types.Replica) ([]types.Replica, error) {
			if len(brokers) < len(current) {
				return nil, fmt.Errorf("%w: %s has %d replicas, target assigns %d",
					types.ErrReplicaCountReduced, tp, len(current), len(brokers))
			}

			existing := make(map[types.NodeID]types.Replica, len(current))
			for _, r := range current {
				existing[r.Broker] = r
			}

			next := make([]types.Replica, 0, len(brokers))
			for i, broker := range brokers {
				r, ok := existing[broker]
				if !ok {
					// New copy: folder picked later by a folder move, sync
					// reported by the broker once it caught up.
					r = types.Replica{Broker: broker}
				}
				r.PreferredLeader = i == 0
				next = append(next, r)
			}

			return next, nil
		})
		if err != nil {
			return err
		}

		a.logger.Debug("brokers reassigned", "partition", tp.String(), "brokers", brokers)
	}

	return nil
}

// MoveToFolders places replicas on specific data folders of their brokers.
//
// The replica must already live on the addressed broker; folder moves never
// change membership. A folder move is intra-broker, so sync status is kept.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - assignments: Target folder per replica
//
// Returns:
//   - error: ErrUnknownPartition if the partition or replica does not exist,
//     retriable NATS error, or write conflict
func (a *Admin) MoveToFolders(ctx context.Context, assignments map[types.TopicPartitionReplica]string) error {
	a.pending.Inc()
	defer a.pending.Dec()

	// Group per partition so one partition gets one CAS cycle.
	grouped := make(map[types.TopicPartition]map[types.NodeID]string)
	for tpr, folder := range assignments {
		tp := tpr.TopicPartition()
		if grouped[tp] == nil {
			grouped[tp] = make(map[types.NodeID]string)
		}
		grouped[tp][tpr.Broker] = folder
	}

	for tp, folders := range grouped {
		err := a.mutate(ctx, tp, false, func(current []types.Replica) ([]types.Replica, error) {
			next := append([]types.Replica(nil), current...)
			for broker, folder := range folders {
				moved := false
				for i := range next {
					if next[i].Broker == broker {
						next[i].Folder = folder
						moved = true

						break
					}
				}
				if !moved {
					return nil, fmt.Errorf("%w: broker %d holds no replica of %s",
						types.ErrUnknownPartition, broker, tp)
				}
			}

			return next, nil
		})
		if err != nil {
			return err
		}

		a.logger.Debug("folders reassigned", "partition", tp.String(), "folders", folders)
	}

	return nil
}

// PreferredLeaderElection promotes the preferred replica of the partition to
// leader, i.e. to the head of the replica list.
//
// The preferred replica must be in-sync; electing a lagging leader would lose
// acknowledged writes.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - tp: Partition to elect on
//
// Returns:
//   - error: ErrUnknownPartition, an error if the preferred replica lags,
//     retriable NATS error, or write conflict
func (a *Admin) PreferredLeaderElection(ctx context.Context, tp types.TopicPartition) error {
	a.pending.Inc()
	defer a.pending.Dec()

	err := a.mutate(ctx, tp, false, func(current []types.Replica) ([]types.Replica, error) {
		if len(current) == 0 {
			return nil, fmt.Errorf("%w: %s has no replicas", types.ErrUnknownPartition, tp)
		}

		preferred := 0
		for i, r := range current {
			if r.PreferredLeader {
				preferred = i

				break
			}
		}

		if !current[preferred].InSync {
			return nil, fmt.Errorf("preferred replica of %s on broker %d is not in-sync",
				tp, current[preferred].Broker)
		}

		if preferred == 0 {
			return current, nil
		}

		// Rotate the preferred replica to the front, keeping the relative
		// order of the followers.
		next := make([]types.Replica, 0, len(current))
		next = append(next, current[preferred])
		next = append(next, current[:preferred]...)
		next = append(next, current[preferred+1:]...)

		return next, nil
	})
	if err != nil {
		return err
	}

	a.logger.Debug("leader elected", "partition", tp.String())

	return nil
}

// ReportInSync records that a broker's replica of the partition caught up
// with the leader. Brokers (or a test harness standing in for them) call this
// after replication finishes.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - tp: Partition the replica belongs to
//   - broker: Broker reporting catch-up
//
// Returns:
//   - error: ErrUnknownPartition if the partition or replica does not exist
func (a *Admin) ReportInSync(ctx context.Context, tp types.TopicPartition, broker types.NodeID) error {
	a.pending.Inc()
	defer a.pending.Dec()

	return a.mutate(ctx, tp, false, func(current []types.Replica) ([]types.Replica, error) {
		next := append([]types.Replica(nil), current...)
		for i := range next {
			if next[i].Broker == broker {
				next[i].InSync = true

				return next, nil
			}
		}

		return nil, fmt.Errorf("%w: broker %d holds no replica of %s", types.ErrUnknownPartition, broker, tp)
	})
}

// mutate runs an optimistic read-modify-write cycle on one partition record.
//
// The transform receives the current replica list (nil when the key does not
// exist and createMissing is set) and returns the replacement. Revision
// conflicts retry up to writeAttempts times; other errors abort.
func (a *Admin) mutate(
	ctx context.Context,
	tp types.TopicPartition,
	createMissing bool,
	transform func(current []types.Replica) ([]types.Replica, error),
) error {
	key := keyOf(tp)

	var lastErr error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, err := a.kv.Get(ctx, key)
		switch {
		case errors.Is(err, jetstream.ErrKeyNotFound):
			if !createMissing {
				return fmt.Errorf("%w: %s", types.ErrUnknownPartition, tp)
			}

			next, terr := transform(nil)
			if terr != nil {
				return terr
			}

			if _, err := a.kv.Create(ctx, key, encode(next)); err != nil {
				if errors.Is(err, jetstream.ErrKeyExists) {
					// Lost the creation race; re-read and transform again.
					lastErr = err

					continue
				}

				return a.classify(fmt.Errorf("failed to create placement %q: %w", key, err))
			}

			return nil

		case err != nil:
			return a.classify(fmt.Errorf("failed to read placement %q: %w", key, err))
		}

		var record placementRecord
		if err := json.Unmarshal(entry.Value(), &record); err != nil {
			return fmt.Errorf("corrupt placement record %q: %w", key, err)
		}

		next, err := transform(record.Replicas)
		if err != nil {
			return err
		}

		if _, err := a.kv.Update(ctx, key, encode(next), entry.Revision()); err != nil {
			if isWrongLastSequence(err) {
				// Another admin won the revision race; retry on fresh state.
				lastErr = err

				continue
			}

			return a.classify(fmt.Errorf("failed to update placement %q: %w", key, err))
		}

		return nil
	}

	return fmt.Errorf("placement %q contended beyond %d attempts: %w", key, writeAttempts, lastErr)
}

// isWrongLastSequence reports a KV revision conflict on Update.
func isWrongLastSequence(err error) bool {
	var apiErr *jetstream.APIError

	return errors.As(err, &apiErr) && apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}

// listKeys resolves the keys to fetch: filtered per topic, or everything.
func (a *Admin) listKeys(ctx context.Context, topics []string) ([]string, error) {
	var (
		lister jetstream.KeyLister
		err    error
	)
	if len(topics) == 0 {
		lister, err = a.kv.ListKeys(ctx)
	} else {
		filters := make([]string, len(topics))
		for i, topic := range topics {
			filters[i] = topic + ".*"
		}
		lister, err = a.kv.ListKeysFiltered(ctx, filters...)
	}
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list placement keys: %w", err)
	}

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}

	return keys, nil
}

// classify wraps transient NATS failures as retriable for the waiter.
func (a *Admin) classify(err error) error {
	if natsutil.IsTransient(err) {
		return types.Retriable(err)
	}

	return err
}

func encode(replicas []types.Replica) []byte {
	data, err := json.Marshal(placementRecord{
		Replicas:  replicas,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		// Replica is a plain value struct; marshaling cannot fail.
		panic(err)
	}

	return data
}

// keyOf maps a partition to its KV key, "<topic>.<partition>". Dots inside
// the topic are fine: the partition is always the last token, and topic
// filters are subject-style ("<topic>.*").
func keyOf(tp types.TopicPartition) string {
	return tp.Topic + "." + strconv.Itoa(tp.Partition)
}

// parseKey is the inverse of keyOf.
func parseKey(key string) (types.TopicPartition, error) {
	idx := strings.LastIndexByte(key, '.')
	if idx <= 0 || idx == len(key)-1 {
		return types.TopicPartition{}, fmt.Errorf("malformed placement key %q", key)
	}

	partition, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return types.TopicPartition{}, fmt.Errorf("malformed placement key %q: %w", key, err)
	}

	return types.TopicPartition{Topic: key[:idx], Partition: partition}, nil
}

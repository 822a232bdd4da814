package astraea

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Haser0305/astraea/types"
)

// fakeAdmin is a scripted in-memory control plane. It records every call in
// order, applies moves to its placement map, and can be told to fail specific
// operations.
type fakeAdmin struct {
	mu sync.Mutex

	placements map[TopicPartition][]Replica
	calls      []string

	// failMoveTo maps a partition to the error its broker move returns.
	failMoveTo map[TopicPartition]error
	// failElection maps a partition to the error its election returns.
	failElection map[TopicPartition]error
	// fetchErr, when set, fails every ClusterAllocation call.
	fetchErr error
}

func newFakeAdmin(placements map[TopicPartition][]Replica) *fakeAdmin {
	copied := make(map[TopicPartition][]Replica, len(placements))
	for tp, replicas := range placements {
		copied[tp] = append([]Replica(nil), replicas...)
	}

	return &fakeAdmin{
		placements:   copied,
		failMoveTo:   map[TopicPartition]error{},
		failElection: map[TopicPartition]error{},
	}
}

func (f *fakeAdmin) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAdmin) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeAdmin) ClusterAllocation(_ context.Context, _ []string) (ClusterAllocation, error) {
	f.record("fetch")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return ClusterAllocation{}, f.fetchErr
	}

	return types.NewClusterAllocation(f.placements), nil
}

func (f *fakeAdmin) MoveToBrokers(_ context.Context, assignments map[TopicPartition][]NodeID) error {
	for tp, brokers := range assignments {
		f.record("moveToBrokers:" + tp.String())
		f.mu.Lock()
		if err := f.failMoveTo[tp]; err != nil {
			f.mu.Unlock()

			return err
		}
		// Membership changes land; folders of new replicas are unknown until
		// a folder move, mirroring a real broker reassignment.
		existing := make(map[NodeID]Replica)
		for _, r := range f.placements[tp] {
			existing[r.Broker] = r
		}
		replicas := make([]Replica, 0, len(brokers))
		for i, broker := range brokers {
			r, ok := existing[broker]
			if !ok {
				r = Replica{Broker: broker, InSync: false}
			}
			r.PreferredLeader = i == 0
			replicas = append(replicas, r)
		}
		f.placements[tp] = replicas
		f.mu.Unlock()
	}

	return nil
}

func (f *fakeAdmin) MoveToFolders(_ context.Context, assignments map[TopicPartitionReplica]string) error {
	for tpr, folder := range assignments {
		f.record("moveToFolders:" + tpr.String())
		f.mu.Lock()
		tp := tpr.TopicPartition()
		for i, r := range f.placements[tp] {
			if r.Broker == tpr.Broker {
				f.placements[tp][i].Folder = folder
			}
		}
		f.mu.Unlock()
	}

	return nil
}

func (f *fakeAdmin) PreferredLeaderElection(_ context.Context, tp TopicPartition) error {
	f.record("electLeader:" + tp.String())
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.failElection[tp]
}

func fastConfig() Config {
	return Config{
		SettleDelay:      time.Millisecond,
		PollInterval:     5 * time.Millisecond,
		FetchTimeout:     time.Second,
		OperationTimeout: time.Second,
	}
}

func TestNewExecutor_Validation(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("nil config", func(t *testing.T) {
		_, err := NewExecutor(nil, newFakeAdmin(nil))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("nil admin", func(t *testing.T) {
		_, err := NewExecutor(&cfg, nil)
		require.ErrorIs(t, err, ErrAdminRequired)
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := cfg
		bad.SettleDelay = -time.Second
		_, err := NewExecutor(&bad, newFakeAdmin(nil))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("zero config gets defaults", func(t *testing.T) {
		exec, err := NewExecutor(&Config{}, newFakeAdmin(nil))
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), exec.cfg)
	})
}

func TestExecute_EmptyTarget(t *testing.T) {
	cfg := fastConfig()
	exec, err := NewExecutor(&cfg, newFakeAdmin(nil))
	require.NoError(t, err)

	err = exec.Execute(t.Context(), NewClusterAllocation(nil))
	require.ErrorIs(t, err, ErrTargetRequired)
}

func TestExecute_NoOpWhenAlreadyFulfilled(t *testing.T) {
	tp0 := TopicPartition{Topic: "orders", Partition: 0}
	placements := map[TopicPartition][]Replica{
		tp0: {
			{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true},
			{Broker: 2, Folder: "/d2", InSync: true},
		},
	}
	admin := newFakeAdmin(placements)

	cfg := fastConfig()
	exec, err := NewExecutor(&cfg, admin)
	require.NoError(t, err)

	require.NoError(t, exec.Execute(t.Context(), NewClusterAllocation(placements)))

	// A single fetch and nothing else: zero operations in all three phases.
	require.Equal(t, []string{"fetch"}, admin.recorded())
}

func TestExecute_SingleBrokerMove(t *testing.T) {
	tp0 := TopicPartition{Topic: "orders", Partition: 0}
	admin := newFakeAdmin(map[TopicPartition][]Replica{
		tp0: {{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})
	target := NewClusterAllocation(map[TopicPartition][]Replica{
		tp0: {{Broker: 2, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})

	cfg := fastConfig()
	exec, err := NewExecutor(&cfg, admin)
	require.NoError(t, err)

	require.NoError(t, exec.Execute(t.Context(), target))

	calls := admin.recorded()
	require.Contains(t, calls, "moveToBrokers:orders-0")
	require.Contains(t, calls, "moveToFolders:orders-0-2")
	require.Contains(t, calls, "electLeader:orders-0")

	// The cluster ended up on the target placement.
	replicas := admin.placements[tp0]
	require.Len(t, replicas, 1)
	require.Equal(t, NodeID(2), replicas[0].Broker)
	require.Equal(t, "/d1", replicas[0].Folder)
	require.True(t, replicas[0].PreferredLeader)
}

func TestExecute_PhaseOrdering(t *testing.T) {
	tp0 := TopicPartition{Topic: "orders", Partition: 0}
	tp1 := TopicPartition{Topic: "orders", Partition: 1}
	admin := newFakeAdmin(map[TopicPartition][]Replica{
		tp0: {{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true}},
		tp1: {{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})
	target := NewClusterAllocation(map[TopicPartition][]Replica{
		tp0: {{Broker: 2, Folder: "/d2", PreferredLeader: true, InSync: true}},
		tp1: {{Broker: 3, Folder: "/d3", PreferredLeader: true, InSync: true}},
	})

	cfg := fastConfig()
	exec, err := NewExecutor(&cfg, admin)
	require.NoError(t, err)
	require.NoError(t, exec.Execute(t.Context(), target))

	phase := func(call string) int {
		switch {
		case call == "fetch":
			return 0
		case len(call) > 13 && call[:13] == "moveToBrokers":
			return 1
		case len(call) > 13 && call[:13] == "moveToFolders":
			return 2
		default:
			return 3
		}
	}

	// All Phase-A calls complete before any Phase-B call, and all Phase-B
	// before any Phase-C. The second fetch (folder diff) happens between A
	// and B, which phase rank 0 also permits.
	last := 0
	sawRank := map[int]bool{}
	for _, call := range admin.recorded() {
		rank := phase(call)
		if rank == 0 {
			require.False(t, sawRank[2] || sawRank[3], "fetches only happen before folder moves: %v", admin.recorded())
			continue
		}
		require.GreaterOrEqual(t, rank, last, "phase order violated: %v", admin.recorded())
		last = rank
		sawRank[rank] = true
	}
	require.True(t, sawRank[1] && sawRank[2] && sawRank[3])
}

func TestExecute_PartialFailureAggregation(t *testing.T) {
	tp0 := TopicPartition{Topic: "orders", Partition: 0}
	tp1 := TopicPartition{Topic: "orders", Partition: 1}
	admin := newFakeAdmin(map[TopicPartition][]Replica{
		tp0: {{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true}},
		tp1: {{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})
	boom := errors.New("unauthorized")
	admin.failMoveTo[tp1] = boom

	target := NewClusterAllocation(map[TopicPartition][]Replica{
		tp0: {{Broker: 2, Folder: "/d1", PreferredLeader: true, InSync: true}},
		tp1: {{Broker: 3, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})

	cfg := fastConfig()
	exec, err := NewExecutor(&cfg, admin)
	require.NoError(t, err)

	err = exec.Execute(t.Context(), target)
	require.ErrorIs(t, err, ErrMigrationFailed)
	require.ErrorIs(t, err, boom)

	// The sibling's broker move was still applied.
	require.Equal(t, NodeID(2), admin.placements[tp0][0].Broker)
	// The failed partition kept its old placement.
	require.Equal(t, NodeID(1), admin.placements[tp1][0].Broker)

	// The plan stopped at the failed barrier: no folder moves or elections.
	for _, call := range admin.recorded() {
		require.NotContains(t, call, "moveToFolders")
		require.NotContains(t, call, "electLeader")
	}
}

func TestExecute_ElectionFailureSurfaces(t *testing.T) {
	tp0 := TopicPartition{Topic: "orders", Partition: 0}
	admin := newFakeAdmin(map[TopicPartition][]Replica{
		tp0: {{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})
	notInSync := errors.New("preferred replica not in-sync")
	admin.failElection[tp0] = notInSync

	target := NewClusterAllocation(map[TopicPartition][]Replica{
		tp0: {{Broker: 2, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})

	cfg := fastConfig()
	exec, err := NewExecutor(&cfg, admin)
	require.NoError(t, err)

	err = exec.Execute(t.Context(), target)
	require.ErrorIs(t, err, ErrMigrationFailed)
	require.ErrorIs(t, err, notInSync)

	// Earlier phases already landed; the move itself is not rolled back.
	require.Equal(t, NodeID(2), admin.placements[tp0][0].Broker)
}

func TestExecute_FetchFailure(t *testing.T) {
	admin := newFakeAdmin(nil)
	admin.fetchErr = errors.New("cluster unreachable")

	target := NewClusterAllocation(map[TopicPartition][]Replica{
		{Topic: "orders", Partition: 0}: {{Broker: 1, Folder: "/d1", PreferredLeader: true}},
	})

	cfg := fastConfig()
	exec, err := NewExecutor(&cfg, admin)
	require.NoError(t, err)

	err = exec.Execute(t.Context(), target)
	require.ErrorContains(t, err, "cluster unreachable")
}

func TestExecute_Hooks(t *testing.T) {
	tp0 := TopicPartition{Topic: "orders", Partition: 0}
	admin := newFakeAdmin(map[TopicPartition][]Replica{
		tp0: {{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})
	boom := errors.New("rejected")
	admin.failElection[tp0] = boom

	target := NewClusterAllocation(map[TopicPartition][]Replica{
		tp0: {{Broker: 2, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})

	var mu sync.Mutex
	var started []MigrationKind
	var failed []TopicPartition
	hooks := &Hooks{
		OnPhaseStart: func(_ context.Context, kind MigrationKind, _ int) error {
			mu.Lock()
			defer mu.Unlock()
			started = append(started, kind)

			return nil
		},
		OnTaskFailed: func(_ context.Context, _ MigrationKind, tp TopicPartition, _ error) error {
			mu.Lock()
			defer mu.Unlock()
			failed = append(failed, tp)

			return errors.New("hook errors are swallowed")
		},
	}

	cfg := fastConfig()
	exec, err := NewExecutor(&cfg, admin, WithHooks(hooks))
	require.NoError(t, err)

	err = exec.Execute(t.Context(), target)
	require.ErrorIs(t, err, boom)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []MigrationKind{ReplicaMove, FolderMove, LeaderElection}, started)
	require.Equal(t, []TopicPartition{tp0}, failed)
}

func TestExecuteAsync(t *testing.T) {
	tp0 := TopicPartition{Topic: "orders", Partition: 0}
	placements := map[TopicPartition][]Replica{
		tp0: {{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true}},
	}
	admin := newFakeAdmin(placements)

	cfg := fastConfig()
	exec, err := NewExecutor(&cfg, admin)
	require.NoError(t, err)

	select {
	case err := <-exec.ExecuteAsync(t.Context(), NewClusterAllocation(placements)):
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ExecuteAsync did not complete")
	}
}

func TestExecute_ConcurrentTasksWithinPhase(t *testing.T) {
	// Two slow broker moves run concurrently: the phase takes roughly one
	// operation's latency, not the sum.
	tp0 := TopicPartition{Topic: "orders", Partition: 0}
	tp1 := TopicPartition{Topic: "orders", Partition: 1}

	admin := newFakeAdmin(map[TopicPartition][]Replica{
		tp0: {{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true}},
		tp1: {{Broker: 1, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})
	slow := &slowAdmin{inner: admin, delay: 150 * time.Millisecond}

	target := NewClusterAllocation(map[TopicPartition][]Replica{
		tp0: {{Broker: 2, Folder: "/d1", PreferredLeader: true, InSync: true}},
		tp1: {{Broker: 3, Folder: "/d1", PreferredLeader: true, InSync: true}},
	})

	cfg := fastConfig()
	exec, err := NewExecutor(&cfg, slow)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, exec.Execute(t.Context(), target))
	elapsed := time.Since(start)

	// Three phases with one 150ms delay each, plus settle: well under the
	// serialized worst case of 6 delayed operations.
	require.Less(t, elapsed, 700*time.Millisecond, "phase tasks should fan out concurrently")
}

// slowAdmin delays every mutation to expose serialization in phase fan-out.
type slowAdmin struct {
	inner *fakeAdmin
	delay time.Duration
}

func (s *slowAdmin) ClusterAllocation(ctx context.Context, topics []string) (ClusterAllocation, error) {
	return s.inner.ClusterAllocation(ctx, topics)
}

func (s *slowAdmin) MoveToBrokers(ctx context.Context, assignments map[TopicPartition][]NodeID) error {
	time.Sleep(s.delay)

	return s.inner.MoveToBrokers(ctx, assignments)
}

func (s *slowAdmin) MoveToFolders(ctx context.Context, assignments map[TopicPartitionReplica]string) error {
	time.Sleep(s.delay)

	return s.inner.MoveToFolders(ctx, assignments)
}

func (s *slowAdmin) PreferredLeaderElection(ctx context.Context, tp TopicPartition) error {
	time.Sleep(s.delay)

	return s.inner.PreferredLeaderElection(ctx, tp)
}

// Package astraea applies a desired replica placement to a partitioned log
// cluster and waits for the cluster to converge on it.
//
// Given a target ClusterAllocation produced by an external planner, the
// Executor fetches the observed allocation from an administrative control
// plane, diffs the two, and issues the minimal migrations in three strictly
// ordered phases: broker reassignment, folder reassignment, preferred leader
// election. Each phase is a barrier; tasks within a phase run concurrently.
//
// Because control-plane reads are eventually consistent, applying a plan does
// not mean the cluster reflects it yet. Wait and WaitConverged poll a
// predicate over fresh cluster state with a timeout and a debounce count (N
// consecutive true observations), absorbing retriable metadata staleness.
//
// # Quick Start
//
//	cfg := astraea.DefaultConfig()
//	exec, err := astraea.NewExecutor(&cfg, admin)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := exec.Execute(ctx, target); err != nil {
//	    log.Fatal(err)
//	}
//
//	converged, err := astraea.WaitConverged(ctx, admin, target, time.Minute, 2)
//
// The control-plane client behind the Admin interface is not part of this
// module's core; admin/natsadmin provides an adapter for clusters that expose
// placement through a NATS JetStream KV bucket, used by the integration tests
// and simulations.
package astraea

// Package natsadmin implements the Admin facade on a NATS JetStream
// Key-Value bucket.
//
// Each partition's replica list is stored as a JSON record under the key
// "<topic>.<partition>". All mutations are optimistic read-modify-write
// cycles guarded by the entry revision, so concurrent admin clients never
// silently overwrite each other's moves.
//
// The adapter is a control-plane model: broker membership, folder placement
// and preferred-leader order live in the bucket, while data-plane catch-up is
// reported by brokers through ReportInSync. Transient NATS errors are wrapped
// as retriable so the convergence waiter treats them as "not yet converged"
// observations.
//
// Example usage:
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	admin, err := natsadmin.Open(ctx, nc, natsadmin.WithBucket("placements"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	exec, err := astraea.NewExecutor(&cfg, admin)
package natsadmin

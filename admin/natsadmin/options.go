package natsadmin

import (
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Haser0305/astraea/types"
)

// Option configures a NATS-backed Admin.
type Option func(*options)

type options struct {
	bucket   string
	storage  jetstream.StorageType
	replicas int
	logger   types.Logger
}

func defaultOptions() options {
	return options{
		bucket:   DefaultBucket,
		storage:  jetstream.FileStorage,
		replicas: 1,
	}
}

// WithBucket sets the KV bucket name holding placement records.
//
// Parameters:
//   - name: Bucket name (default: "astraea-placements")
//
// Returns:
//   - Option: Functional option for Open
func WithBucket(name string) Option {
	return func(o *options) {
		if name != "" {
			o.bucket = name
		}
	}
}

// WithStorage sets the storage backend for the placement bucket.
//
// Parameters:
//   - storage: jetstream.FileStorage (default) or jetstream.MemoryStorage
//
// Returns:
//   - Option: Functional option for Open
func WithStorage(storage jetstream.StorageType) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithReplicas sets the JetStream replica count for the placement bucket.
//
// Parameters:
//   - replicas: Stream replicas (default: 1; use 3 for HA deployments)
//
// Returns:
//   - Option: Functional option for Open
func WithReplicas(replicas int) Option {
	return func(o *options) {
		if replicas > 0 {
			o.replicas = replicas
		}
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Functional option for Open and New
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

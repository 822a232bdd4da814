package astraea

import (
	"fmt"
	"time"
)

// Config is the timing configuration for the Executor and the convergence
// waiter.
//
// All duration fields accept standard Go duration strings like "300ms", "5s".
type Config struct {
	// SettleDelay is the pause between the broker-move barrier and the folder
	// diff. Broker-side metadata propagation for a just-submitted reassignment
	// is asynchronous; querying immediately can return stale per-replica
	// folder information. The delay trades a fixed wait for a correct diff,
	// not for data correctness.
	// Recommended: a few hundred milliseconds.
	SettleDelay time.Duration `yaml:"settleDelay"`

	// PollInterval is the sleep between convergence predicate evaluations.
	// Short enough for responsive waits, long enough to avoid hot-polling the
	// control plane. Recommended: ~300ms.
	PollInterval time.Duration `yaml:"pollInterval"`

	// FetchTimeout bounds each cluster allocation fetch issued by the
	// executor. Zero disables the per-fetch bound (the caller's context still
	// applies).
	FetchTimeout time.Duration `yaml:"fetchTimeout"`

	// OperationTimeout bounds each submitted migration operation (broker move,
	// folder move, leader election). Zero disables the per-operation bound.
	OperationTimeout time.Duration `yaml:"operationTimeout"`
}

// DefaultConfig returns a configuration with production-ready defaults.
//
// Returns:
//   - Config: Defaults (500ms settle, 300ms poll, 30s fetch, 1m operation)
func DefaultConfig() Config {
	return Config{
		SettleDelay:      500 * time.Millisecond,
		PollInterval:     300 * time.Millisecond,
		FetchTimeout:     30 * time.Second,
		OperationTimeout: time.Minute,
	}
}

// ApplyDefaults fills zero-valued fields of cfg with defaults.
//
// Negative values are left for Validate to reject.
//
// Parameters:
//   - cfg: Configuration to fill in place (nil is a no-op)
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	def := DefaultConfig()
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = def.SettleDelay
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = def.OperationTimeout
	}
}

// Validate checks the configuration for invalid values.
//
// Returns:
//   - error: ErrInvalidConfig-wrapped description of the first problem found
func (c *Config) Validate() error {
	if c.SettleDelay < 0 {
		return fmt.Errorf("%w: settleDelay must be non-negative, got %s", ErrInvalidConfig, c.SettleDelay)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: pollInterval must be positive, got %s", ErrInvalidConfig, c.PollInterval)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("%w: fetchTimeout must be non-negative, got %s", ErrInvalidConfig, c.FetchTimeout)
	}
	if c.OperationTimeout < 0 {
		return fmt.Errorf("%w: operationTimeout must be non-negative, got %s", ErrInvalidConfig, c.OperationTimeout)
	}

	return nil
}

package astraea

// Option configures an Executor with optional dependencies.
type Option func(*executorOptions)

// executorOptions holds optional Executor configuration.
type executorOptions struct {
	hooks   *Hooks
	metrics MetricsCollector
	logger  Logger
}

// WithHooks sets plan lifecycle hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewExecutor
//
// Example:
//
//	hooks := &astraea.Hooks{
//	    OnPhaseComplete: func(ctx context.Context, kind astraea.MigrationKind, err error) error {
//	        notify(kind, err)
//	        return nil
//	    },
//	}
//	exec, err := astraea.NewExecutor(&cfg, admin, astraea.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *executorOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewExecutor
//
// Example:
//
//	collector := metrics.NewPrometheus(nil, "astraea")
//	exec, err := astraea.NewExecutor(&cfg, admin, astraea.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *executorOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewExecutor
//
// Example:
//
//	logger := zap.NewExample().Sugar()
//	exec, err := astraea.NewExecutor(&cfg, admin, astraea.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *executorOptions) {
		o.logger = logger
	}
}

package wincov

// Option configures a Checker with optional dependencies.
type Option func(*checkerOptions)

// checkerOptions holds optional Checker configuration.
type checkerOptions struct {
	metrics MetricsCollector
	logger  Logger
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	collector := metrics.NewPrometheus(nil, "wincov")
//	checker, err := wincov.New(&cfg, agg, wincov.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *checkerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (the built-in implementations wrap
//     log/slog; any structured logger satisfying the interface works)
//
// Returns:
//   - Option: Functional option for New
//
// Example:
//
//	logger := logging.NewSlogDefault()
//	checker, err := wincov.New(&cfg, agg, wincov.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *checkerOptions) {
		o.logger = logger
	}
}

package genarena

type options struct {
	capacity int
	logger   *Logger
	metrics  MetricsCollector
}

// Option configures an Arena.
type Option func(*options)

// WithCapacity pre-allocates room for n slots. It does not change behavior.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithLogger sets the logger used to report retired slots.
//
// If nil is passed, nothing is logged.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector sets the collector notified when a slot is retired.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

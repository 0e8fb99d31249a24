package cmhash

import (
	"time"

	"github.com/hupe1980/cmhash/persistence"
	"github.com/hupe1980/cmhash/tracking"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	sink             tracking.Sink
	snapshotter      *persistence.Snapshotter
	runName          string
	clock            func() time.Time
}

// Option configures a Trainer.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the collector for step and epoch timings.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithSink sets where epoch reports are recorded. Combine several sinks
// with tracking.NewMulti.
func WithSink(s tracking.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// WithSnapshotter sets where the best snapshot is persisted at the end of
// Run. Without a snapshotter nothing is persisted.
func WithSnapshotter(s *persistence.Snapshotter) Option {
	return func(o *options) {
		o.snapshotter = s
	}
}

// WithRunName overrides the generated run name.
func WithRunName(name string) Option {
	return func(o *options) {
		o.runName = name
	}
}

// WithClock sets the time source used for run naming and elapsed time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		clock:            time.Now,
	}
}

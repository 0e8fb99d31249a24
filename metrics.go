package cmhash

import (
	"math"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting training metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus (see tracking/prom).
type MetricsCollector interface {
	// RecordStep is called after each optimization step.
	// samples is the batch size, err is nil if successful.
	RecordStep(samples int, duration time.Duration, err error)

	// RecordEpoch is called after each training phase with the
	// sample-weighted average loss.
	RecordEpoch(epoch int, loss float64, duration time.Duration)

	// RecordValidation is called after each validation phase.
	RecordValidation(queries int, duration time.Duration, err error)

	// RecordPersist is called after the best snapshot is persisted.
	RecordPersist(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStep(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordEpoch(int, float64, time.Duration)    {}
func (NoopMetricsCollector) RecordValidation(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPersist(time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	StepCount       atomic.Int64
	StepErrors      atomic.Int64
	StepTotalNanos  atomic.Int64
	Samples         atomic.Int64
	EpochCount      atomic.Int64
	ValidationCount atomic.Int64
	ValidationErr   atomic.Int64
	PersistCount    atomic.Int64
	PersistErrors   atomic.Int64
	lastLoss        atomic.Uint64
}

// RecordStep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStep(samples int, duration time.Duration, err error) {
	b.StepCount.Add(1)
	b.StepTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.StepErrors.Add(1)
		return
	}
	b.Samples.Add(int64(samples))
}

// RecordEpoch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEpoch(_ int, loss float64, _ time.Duration) {
	b.EpochCount.Add(1)
	b.lastLoss.Store(math.Float64bits(loss))
}

// RecordValidation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordValidation(_ int, _ time.Duration, err error) {
	b.ValidationCount.Add(1)
	if err != nil {
		b.ValidationErr.Add(1)
	}
}

// RecordPersist implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPersist(_ time.Duration, err error) {
	b.PersistCount.Add(1)
	if err != nil {
		b.PersistErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		StepCount:       b.StepCount.Load(),
		StepErrors:      b.StepErrors.Load(),
		StepAvgNanos:    b.getAvgStepNanos(),
		Samples:         b.Samples.Load(),
		EpochCount:      b.EpochCount.Load(),
		LastEpochLoss:   math.Float64frombits(b.lastLoss.Load()),
		ValidationCount: b.ValidationCount.Load(),
		ValidationErr:   b.ValidationErr.Load(),
		PersistCount:    b.PersistCount.Load(),
		PersistErrors:   b.PersistErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgStepNanos() int64 {
	count := b.StepCount.Load()
	if count == 0 {
		return 0
	}
	return b.StepTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	StepCount       int64
	StepErrors      int64
	StepAvgNanos    int64
	Samples         int64
	EpochCount      int64
	LastEpochLoss   float64
	ValidationCount int64
	ValidationErr   int64
	PersistCount    int64
	PersistErrors   int64
}

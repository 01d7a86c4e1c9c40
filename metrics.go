package genarena

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; package
// prommetrics provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordSlotRetired is called when a slot is retired after its
	// generation counter is exhausted.
	RecordSlotRetired()

	// RecordSave is called after each snapshot save.
	// size is the number of bytes written, err is nil if successful.
	RecordSave(size int, duration time.Duration, err error)

	// RecordLoad is called after each snapshot load.
	// size is the number of bytes read, err is nil if successful.
	RecordLoad(size int, duration time.Duration, err error)

	// RecordPrune is called after old snapshot versions were deleted.
	RecordPrune(removed int, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSlotRetired()                   {}
func (NoopMetricsCollector) RecordSave(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPrune(int, error)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SlotsRetired   atomic.Int64
	SaveCount      atomic.Int64
	SaveErrors     atomic.Int64
	SaveBytes      atomic.Int64
	SaveTotalNanos atomic.Int64
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadBytes      atomic.Int64
	LoadTotalNanos atomic.Int64
	PrunedVersions atomic.Int64
	PruneErrors    atomic.Int64
}

// RecordSlotRetired implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSlotRetired() {
	b.SlotsRetired.Add(1)
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(size int, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(int64(size))
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(size int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(int64(size))
}

// RecordPrune implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPrune(removed int, err error) {
	b.PrunedVersions.Add(int64(removed))
	if err != nil {
		b.PruneErrors.Add(1)
	}
}

// AverageSaveLatency returns the mean save duration.
func (b *BasicMetricsCollector) AverageSaveLatency() time.Duration {
	n := b.SaveCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(b.SaveTotalNanos.Load() / n)
}

// AverageLoadLatency returns the mean load duration.
func (b *BasicMetricsCollector) AverageLoadLatency() time.Duration {
	n := b.LoadCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(b.LoadTotalNanos.Load() / n)
}

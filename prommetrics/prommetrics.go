// Package prommetrics exports arena and snapshot metrics to Prometheus.
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/genarena"
)

const namespace = "genarena"

// Collector implements genarena.MetricsCollector with Prometheus metrics.
type Collector struct {
	retired        prometheus.Counter
	latency        *prometheus.HistogramVec
	bytes          *prometheus.CounterVec
	ops            *prometheus.CounterVec
	prunedVersions prometheus.Counter
}

var _ genarena.MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		retired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_retired_total",
			Help:      "Slots permanently retired after generation overflow.",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Latency of snapshot operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes_total",
			Help:      "Bytes written or read by successful snapshot operations.",
		}, []string{"op"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_operations_total",
			Help:      "Snapshot operations by result.",
		}, []string{"op", "status"}),
		prunedVersions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_pruned_versions_total",
			Help:      "Snapshot versions deleted by prune.",
		}),
	}

	for _, m := range []prometheus.Collector{c.retired, c.latency, c.bytes, c.ops, c.prunedVersions} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) RecordSlotRetired() {
	c.retired.Inc()
}

func (c *Collector) RecordSave(size int, d time.Duration, err error) {
	c.observe("save", size, d, err)
}

func (c *Collector) RecordLoad(size int, d time.Duration, err error) {
	c.observe("load", size, d, err)
}

func (c *Collector) observe(op string, size int, d time.Duration, err error) {
	s := status(err)
	c.ops.WithLabelValues(op, s).Inc()
	c.latency.WithLabelValues(op, s).Observe(d.Seconds())
	if err == nil {
		c.bytes.WithLabelValues(op).Add(float64(size))
	}
}

func (c *Collector) RecordPrune(removed int, err error) {
	c.ops.WithLabelValues("prune", status(err)).Inc()
	c.prunedVersions.Add(float64(removed))
}

package prommetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/genarena"
)

// StatsSource reports slot usage. *genarena.Synced satisfies it; a plain
// *genarena.Arena does too but must not be mutated while scraped.
type StatsSource interface {
	Stats() genarena.Stats
}

var (
	slotsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "slots"),
		"Arena slots by state.",
		[]string{"arena", "state"}, nil,
	)
	capacityDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "capacity_slots"),
		"Total arena slots.",
		[]string{"arena"}, nil,
	)
)

// StatsCollector reports the slot usage of named arenas on every scrape.
type StatsCollector struct {
	sources map[string]StatsSource
}

var _ prometheus.Collector = (*StatsCollector)(nil)

// NewStatsCollector creates a collector for the given arenas, keyed by name.
func NewStatsCollector(sources map[string]StatsSource) *StatsCollector {
	return &StatsCollector{sources: sources}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- slotsDesc
	ch <- capacityDesc
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	for name, src := range c.sources {
		s := src.Stats()
		ch <- prometheus.MustNewConstMetric(slotsDesc, prometheus.GaugeValue, float64(s.Len), name, "occupied")
		ch <- prometheus.MustNewConstMetric(slotsDesc, prometheus.GaugeValue, float64(s.Free), name, "free")
		ch <- prometheus.MustNewConstMetric(slotsDesc, prometheus.GaugeValue, float64(s.Retired), name, "retired")
		ch <- prometheus.MustNewConstMetric(capacityDesc, prometheus.GaugeValue, float64(s.Cap), name)
	}
}

// Package metric provides Prometheus metrics for GhostTape.
package metric

import "github.com/prometheus/client_golang/prometheus"

// IndexStats is a point-in-time snapshot of the ghost index.
type IndexStats struct {
	// Traces is the number of indexed trace files.
	Traces int
	// Maps is the number of distinct map identities seen.
	Maps int
	// Skipped is the number of files skipped as corrupt or foreign.
	Skipped int
}

// StatsFunc reports current index statistics. It must be safe for
// concurrent use.
type StatsFunc func() IndexStats

var (
	descIndexTraces = prometheus.NewDesc(
		"ghosttape_index_traces",
		"Number of trace files in the ghost index.",
		nil, nil,
	)
	descIndexMaps = prometheus.NewDesc(
		"ghosttape_index_maps",
		"Number of distinct map identities in the ghost index.",
		nil, nil,
	)
	descIndexSkipped = prometheus.NewDesc(
		"ghosttape_index_skipped_files",
		"Number of files skipped as corrupt or foreign during indexing.",
		nil, nil,
	)
)

// Collector exposes ghost index statistics as Prometheus metrics. It
// pulls a fresh snapshot on every scrape.
type Collector struct {
	stats StatsFunc
}

// NewCollector creates a collector backed by the given stats function.
func NewCollector(stats StatsFunc) *Collector {
	return &Collector{stats: stats}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descIndexTraces
	ch <- descIndexMaps
	ch <- descIndexSkipped
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(descIndexTraces, prometheus.GaugeValue, float64(s.Traces))
	ch <- prometheus.MustNewConstMetric(descIndexMaps, prometheus.GaugeValue, float64(s.Maps))
	ch <- prometheus.MustNewConstMetric(descIndexSkipped, prometheus.GaugeValue, float64(s.Skipped))
}

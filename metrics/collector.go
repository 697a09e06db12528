// Package metrics exposes leak-detector activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/guileen/leakdetect/leak"
)

// Collector reads the process-wide detector registry on every scrape.
// Collect only loads atomic counters and never touches detector hot paths.
type Collector struct {
	tracked    *prometheus.Desc
	sampledOut *prometheus.Desc
	closed     *prometheus.Desc
	leaked     *prometheus.Desc
	reported   *prometheus.Desc
	dropped    *prometheus.Desc
	active     *prometheus.Desc
}

// NewCollector creates a Collector. Register it with a prometheus.Registerer.
func NewCollector() *Collector {
	labels := []string{"resource_type"}
	return &Collector{
		tracked: prometheus.NewDesc("leakdetect_trackers_installed_total",
			"Trackers installed by the sampling gate.", labels, nil),
		sampledOut: prometheus.NewDesc("leakdetect_trackers_sampled_out_total",
			"Track calls that fell through the sampling gate.", labels, nil),
		closed: prometheus.NewDesc("leakdetect_trackers_closed_total",
			"Trackers released normally via Close.", labels, nil),
		leaked: prometheus.NewDesc("leakdetect_leaks_total",
			"Trackers retired by the reclaim drain, i.e. leaked resources.", labels, nil),
		reported: prometheus.NewDesc("leakdetect_reports_emitted_total",
			"Leak reports emitted after deduplication.", labels, nil),
		dropped: prometheus.NewDesc("leakdetect_records_dropped_total",
			"Access records discarded by trail back-off.", labels, nil),
		active: prometheus.NewDesc("leakdetect_trackers_active",
			"Live trackers neither closed nor disposed.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tracked
	ch <- c.sampledOut
	ch <- c.closed
	ch <- c.leaked
	ch <- c.reported
	ch <- c.dropped
	ch <- c.active
}

// Collect implements prometheus.Collector. Detectors sharing a resource-type
// label are aggregated into one series.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	type agg struct {
		stats  leak.Stats
		active int
	}
	byType := make(map[string]*agg)
	for _, d := range leak.Detectors() {
		a := byType[d.ResourceType()]
		if a == nil {
			a = &agg{}
			byType[d.ResourceType()] = a
		}
		s := d.Stats()
		a.stats.Tracked += s.Tracked
		a.stats.SampledOut += s.SampledOut
		a.stats.Closed += s.Closed
		a.stats.Disposed += s.Disposed
		a.stats.Reported += s.Reported
		a.stats.DroppedRecords += s.DroppedRecords
		a.active += d.ActiveCount()
	}

	for resourceType, a := range byType {
		ch <- prometheus.MustNewConstMetric(c.tracked, prometheus.CounterValue,
			float64(a.stats.Tracked), resourceType)
		ch <- prometheus.MustNewConstMetric(c.sampledOut, prometheus.CounterValue,
			float64(a.stats.SampledOut), resourceType)
		ch <- prometheus.MustNewConstMetric(c.closed, prometheus.CounterValue,
			float64(a.stats.Closed), resourceType)
		ch <- prometheus.MustNewConstMetric(c.leaked, prometheus.CounterValue,
			float64(a.stats.Disposed), resourceType)
		ch <- prometheus.MustNewConstMetric(c.reported, prometheus.CounterValue,
			float64(a.stats.Reported), resourceType)
		ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue,
			float64(a.stats.DroppedRecords), resourceType)
		ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue,
			float64(a.active), resourceType)
	}
}
